package reconciler

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/adapter/marketplace"
	"github.com/rmawad/partsync/internal/store"
)

// Module wires the view-tracking reconciler.
var Module = fx.Provide(newReconciler)

type reconcilerParams struct {
	fx.In

	Store  *store.OrderStore
	Client marketplace.Client
	Logger *slog.Logger
}

func newReconciler(p reconcilerParams) *Reconciler {
	return New(p.Store, p.Client, p.Logger)
}
