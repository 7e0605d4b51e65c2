package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rmawad/partsync/internal/acceptance"
	"github.com/rmawad/partsync/internal/adapter/marketplace"
	"github.com/rmawad/partsync/internal/app"
	"github.com/rmawad/partsync/internal/domain/model"
)

// OrderFacade exposes the committed order snapshot and the open/view flow.
type OrderFacade interface {
	Orders() []model.Order
	Order(number string) (model.Order, bool)
	OpenOrder(ctx context.Context, number string) error
}

// AcceptanceFacade exposes the quote acceptance transaction.
type AcceptanceFacade interface {
	Accept(ctx context.Context, req acceptance.Request) error
	ReuploadReceipt(ctx context.Context, number string, receipt marketplace.Attachment) error
	ShippingCost(city string, size model.PartSize) decimal.Decimal
}

// RefreshFacade exposes manual refresh and engine introspection.
type RefreshFacade interface {
	Refresh(ctx context.Context, force bool) error
	Status() app.EngineStatus
}

// SyncFacade aggregates the full set of operations used across handlers.
type SyncFacade interface {
	OrderFacade
	AcceptanceFacade
	RefreshFacade
}
