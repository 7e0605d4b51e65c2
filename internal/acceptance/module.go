package acceptance

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/adapter/marketplace"
	"github.com/rmawad/partsync/internal/config"
	"github.com/rmawad/partsync/internal/refresher"
	"github.com/rmawad/partsync/internal/store"
)

// Module wires the shipping table and acceptance coordinator.
var Module = fx.Provide(newShippingTable, newCoordinator)

func newShippingTable(cfg *config.Config) (ShippingTable, error) {
	if cfg.ShippingTableFile == "" {
		return DefaultShippingTable(), nil
	}
	return LoadShippingTable(cfg.ShippingTableFile)
}

type coordinatorParams struct {
	fx.In

	Store     *store.OrderStore
	Client    marketplace.Client
	Refresher *refresher.Refresher
	Shipping  ShippingTable
	Config    *config.Config
	Logger    *slog.Logger
}

func newCoordinator(p coordinatorParams) *Coordinator {
	return NewCoordinator(p.Store, p.Client, p.Refresher, p.Shipping, p.Config.QuoteValidity, p.Logger)
}
