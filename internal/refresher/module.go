package refresher

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/adapter/marketplace"
	"github.com/rmawad/partsync/internal/config"
	"github.com/rmawad/partsync/internal/storage/postgres"
	"github.com/rmawad/partsync/internal/store"
)

// Module wires the snapshot refresher.
var Module = fx.Provide(newRefresher)

type refresherParams struct {
	fx.In

	Client marketplace.Client
	Store  *store.OrderStore
	Cache  *postgres.Cache `optional:"true"`
	Config *config.Config
	Logger *slog.Logger
}

func newRefresher(p refresherParams) *Refresher {
	var snapshots Snapshotter
	if p.Cache != nil {
		snapshots = p.Cache
	}
	return New(p.Client, p.Store, snapshots, p.Config.RefreshDebounce, p.Logger)
}
