package store

import "go.uber.org/fx"

// Module exposes the in-memory order store.
var Module = fx.Provide(NewOrderStore)
