package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmawad/partsync/internal/acceptance"
	"github.com/rmawad/partsync/internal/adapter/marketplace"
	"github.com/rmawad/partsync/internal/domain/model"
	"github.com/rmawad/partsync/internal/reconciler"
	"github.com/rmawad/partsync/internal/refresher"
	"github.com/rmawad/partsync/internal/store"
)

// EngineStatus reports refresh progress for health checks.
type EngineStatus struct {
	Generation           int64
	LastCommitGeneration int64
	LastCommitAt         time.Time
	Orders               int
	Version              uint64
}

// SyncFacade aggregates the engine components behind the surface the HTTP
// layer consumes.
type SyncFacade struct {
	store       *store.OrderStore
	refresher   *refresher.Refresher
	reconciler  *reconciler.Reconciler
	coordinator *acceptance.Coordinator
}

// NewSyncFacade constructs the facade.
func NewSyncFacade(orderStore *store.OrderStore, r *refresher.Refresher, rec *reconciler.Reconciler, coord *acceptance.Coordinator) *SyncFacade {
	return &SyncFacade{
		store:       orderStore,
		refresher:   r,
		reconciler:  rec,
		coordinator: coord,
	}
}

// Orders returns the committed order snapshot.
func (f *SyncFacade) Orders() []model.Order {
	return f.store.Orders()
}

// Order returns a single order by number.
func (f *SyncFacade) Order(number string) (model.Order, bool) {
	return f.store.Get(number)
}

// OpenOrder marks the order's quotes viewed and notifies providers.
func (f *SyncFacade) OpenOrder(ctx context.Context, number string) error {
	return f.reconciler.OrderOpened(ctx, number)
}

// Accept runs the quote acceptance transaction.
func (f *SyncFacade) Accept(ctx context.Context, req acceptance.Request) error {
	return f.coordinator.Accept(ctx, req)
}

// ReuploadReceipt resubmits a rejected payment receipt.
func (f *SyncFacade) ReuploadReceipt(ctx context.Context, number string, receipt marketplace.Attachment) error {
	return f.coordinator.Reupload(ctx, number, receipt)
}

// ShippingCost prices delivery for a city and part size.
func (f *SyncFacade) ShippingCost(city string, size model.PartSize) decimal.Decimal {
	return f.coordinator.ShippingCost(city, size)
}

// Refresh forces a snapshot fetch.
func (f *SyncFacade) Refresh(ctx context.Context, force bool) error {
	return f.refresher.Refresh(ctx, force)
}

// Status reports the engine's refresh progress.
func (f *SyncFacade) Status() EngineStatus {
	lastGen, lastAt := f.refresher.LastCommit()
	return EngineStatus{
		Generation:           f.refresher.Generation(),
		LastCommitGeneration: lastGen,
		LastCommitAt:         lastAt,
		Orders:               f.store.Len(),
		Version:              f.store.Version(),
	}
}
