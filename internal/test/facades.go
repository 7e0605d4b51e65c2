// Package test provides hand-written stubs shared across package tests.
package test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmawad/partsync/internal/acceptance"
	"github.com/rmawad/partsync/internal/adapter/marketplace"
	"github.com/rmawad/partsync/internal/app"
	"github.com/rmawad/partsync/internal/domain/model"
)

// SampleOrder returns a pending order with two quotes, usable as a default.
func SampleOrder() model.Order {
	return model.Order{
		OrderNumber: "ORD-1",
		Status:      model.StatusPending,
		FormData:    model.FormData{CarMake: "Toyota", CarModel: "Camry", CarYear: "2019", PartDescription: "front bumper"},
		Quotes: []model.Quote{
			{ID: "q1", ProviderID: "p1", Price: decimal.NewFromInt(350), PartSizeCategory: model.PartSizeLarge, CreatedAt: time.Unix(1700000000, 0)},
			{ID: "q2", ProviderID: "p2", Price: decimal.NewFromInt(280), PartSizeCategory: model.PartSizeLarge, CreatedAt: time.Unix(1700000100, 0)},
		},
		CreatedAt: time.Unix(1699990000, 0),
	}
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	OrdersFn func() []model.Order
	OrderFn  func(string) (model.Order, bool)
	OpenFn   func(context.Context, string) error
}

// Orders returns the configured list or a single sample order.
func (s OrderFacadeStub) Orders() []model.Order {
	if s.OrdersFn != nil {
		return s.OrdersFn()
	}
	return []model.Order{SampleOrder()}
}

// Order returns the configured order or the sample order for its number.
func (s OrderFacadeStub) Order(number string) (model.Order, bool) {
	if s.OrderFn != nil {
		return s.OrderFn(number)
	}
	sample := SampleOrder()
	if number == sample.OrderNumber {
		return sample, true
	}
	return model.Order{}, false
}

// OpenOrder delegates to the provided function or succeeds.
func (s OrderFacadeStub) OpenOrder(ctx context.Context, number string) error {
	if s.OpenFn != nil {
		return s.OpenFn(ctx, number)
	}
	return nil
}

// AcceptanceFacadeStub simulates the acceptance transaction.
type AcceptanceFacadeStub struct {
	AcceptFn   func(context.Context, acceptance.Request) error
	ReuploadFn func(context.Context, string, marketplace.Attachment) error
	ShippingFn func(string, model.PartSize) decimal.Decimal
}

// Accept executes the configured handler.
func (s AcceptanceFacadeStub) Accept(ctx context.Context, req acceptance.Request) error {
	if s.AcceptFn != nil {
		return s.AcceptFn(ctx, req)
	}
	return nil
}

// ReuploadReceipt executes the configured handler.
func (s AcceptanceFacadeStub) ReuploadReceipt(ctx context.Context, number string, receipt marketplace.Attachment) error {
	if s.ReuploadFn != nil {
		return s.ReuploadFn(ctx, number, receipt)
	}
	return nil
}

// ShippingCost returns the configured price or a fixed default.
func (s AcceptanceFacadeStub) ShippingCost(city string, size model.PartSize) decimal.Decimal {
	if s.ShippingFn != nil {
		return s.ShippingFn(city, size)
	}
	return decimal.NewFromInt(35)
}

// RefreshFacadeStub simulates manual refresh and status reporting.
type RefreshFacadeStub struct {
	RefreshFn func(context.Context, bool) error
	StatusFn  func() app.EngineStatus
}

// Refresh executes the configured handler.
func (s RefreshFacadeStub) Refresh(ctx context.Context, force bool) error {
	if s.RefreshFn != nil {
		return s.RefreshFn(ctx, force)
	}
	return nil
}

// Status returns the configured status or a committed-once default.
func (s RefreshFacadeStub) Status() app.EngineStatus {
	if s.StatusFn != nil {
		return s.StatusFn()
	}
	return app.EngineStatus{Generation: 1, LastCommitGeneration: 1, LastCommitAt: time.Unix(1700000000, 0), Orders: 1, Version: 1}
}

// SyncFacadeStub aggregates the facade stubs for router level tests.
type SyncFacadeStub struct {
	OrderFacadeStub
	AcceptanceFacadeStub
	RefreshFacadeStub
}
