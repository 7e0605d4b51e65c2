package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmawad/partsync/internal/acceptance"
	"github.com/rmawad/partsync/internal/adapter/marketplace"
	"github.com/rmawad/partsync/internal/domain/model"
	"github.com/rmawad/partsync/internal/normalize"
	"github.com/rmawad/partsync/internal/reconciler"
	"github.com/rmawad/partsync/internal/refresher"
	"github.com/rmawad/partsync/internal/store"
)

type fetcherStub struct {
	payload []byte
}

func (f fetcherStub) FetchOrders(context.Context, bool) ([]normalize.RawOrder, error) {
	return normalize.DecodeOrders(f.payload)
}

type notifierStub struct {
	notified []marketplace.ViewNotification
}

func (n *notifierStub) NotifyQuoteViewed(_ context.Context, notification marketplace.ViewNotification) error {
	n.notified = append(n.notified, notification)
	return nil
}

type submitterStub struct {
	submitted []marketplace.AcceptanceSubmission
}

func (s *submitterStub) AcceptQuote(_ context.Context, _ string, submission marketplace.AcceptanceSubmission) error {
	s.submitted = append(s.submitted, submission)
	return nil
}

const facadePayload = `[
	{
		"orderNumber": "ORD-1",
		"status": "pending",
		"quotes": [
			{"id": "q1", "providerId": "p1", "price": "350", "partSizeCategory": "large"},
			{"id": "q2", "providerId": "p2", "price": "280", "partSizeCategory": "large"}
		]
	}
]`

func newTestFacade(t *testing.T) (*SyncFacade, *store.OrderStore, *notifierStub, *submitterStub) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	orderStore := store.NewOrderStore()

	r := refresher.New(fetcherStub{payload: []byte(facadePayload)}, orderStore, nil, time.Millisecond, logger)
	notifier := &notifierStub{}
	rec := reconciler.New(orderStore, notifier, logger)
	submitter := &submitterStub{}
	coord := acceptance.NewCoordinator(orderStore, submitter, r, acceptance.DefaultShippingTable(), 72*time.Hour, logger)

	return NewSyncFacade(orderStore, r, rec, coord), orderStore, notifier, submitter
}

func TestFacadeRefreshCommitsOrders(t *testing.T) {
	facade, orderStore, _, _ := newTestFacade(t)

	if err := facade.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if orderStore.Len() != 1 {
		t.Fatalf("expected 1 committed order, got %d", orderStore.Len())
	}

	orders := facade.Orders()
	if len(orders) != 1 || orders[0].OrderNumber != "ORD-1" {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	order, ok := facade.Order("ORD-1")
	if !ok || len(order.Quotes) != 2 {
		t.Fatalf("unexpected single order: %+v", order)
	}
}

func TestFacadeOpenOrderFlipsViewedAndNotifies(t *testing.T) {
	facade, _, notifier, _ := newTestFacade(t)

	if err := facade.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := facade.OpenOrder(context.Background(), "ORD-1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	order, _ := facade.Order("ORD-1")
	for _, q := range order.Quotes {
		if !q.ViewedByCustomer {
			t.Fatalf("quote %s not marked viewed", q.ID)
		}
	}
	if len(notifier.notified) != 2 {
		t.Fatalf("expected 2 provider notifications, got %d", len(notifier.notified))
	}
}

func TestFacadeAcceptSubmitsQuote(t *testing.T) {
	facade, _, _, submitter := newTestFacade(t)

	if err := facade.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	err := facade.Accept(context.Background(), acceptance.Request{
		OrderNumber:     "ORD-1",
		QuoteID:         "q2",
		DeliveryMethod:  model.DeliveryPickup,
		PaymentMethodID: model.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if len(submitter.submitted) != 1 || submitter.submitted[0].QuoteID != "q2" {
		t.Fatalf("unexpected submissions: %+v", submitter.submitted)
	}
}

func TestFacadeShippingCost(t *testing.T) {
	facade, _, _, _ := newTestFacade(t)

	got := facade.ShippingCost("riyadh", model.PartSizeLarge)
	if !got.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("shipping cost = %s", got)
	}
}

func TestFacadeStatus(t *testing.T) {
	facade, orderStore, _, _ := newTestFacade(t)

	status := facade.Status()
	if status.Generation != 0 || status.Orders != 0 {
		t.Fatalf("expected zero status before first refresh, got %+v", status)
	}

	if err := facade.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	status = facade.Status()
	if status.Generation != 1 || status.LastCommitGeneration != 1 {
		t.Fatalf("unexpected generations: %+v", status)
	}
	if status.Orders != 1 || status.Version != orderStore.Version() {
		t.Fatalf("unexpected counters: %+v", status)
	}
	if status.LastCommitAt.IsZero() {
		t.Fatalf("expected commit timestamp to be set")
	}
}
