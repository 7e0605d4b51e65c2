// Package reconciler flips view-tracking state for the currently open order
// and notifies quote owners.
package reconciler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rmawad/partsync/internal/adapter/marketplace"
	domainErrors "github.com/rmawad/partsync/internal/domain/errors"
	"github.com/rmawad/partsync/internal/store"
)

// NotificationTypeQuoteViewed tags the side-effect notification emitted to a
// quote's provider.
const NotificationTypeQuoteViewed = "QUOTE_VIEWED"

// Notifier delivers the quote-viewed notification to the provider.
type Notifier interface {
	NotifyQuoteViewed(ctx context.Context, notification marketplace.ViewNotification) error
}

// Reconciler applies the optimistic viewed flip when an order is opened. The
// flip goes through the store's speculative overlay (so a later authoritative
// replace can never regress it) and each newly viewed quote produces exactly
// one provider notification.
type Reconciler struct {
	store    *store.OrderStore
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	emitted map[string]bool
}

// New constructs a reconciler.
func New(orderStore *store.OrderStore, notifier Notifier, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:    orderStore,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		emitted:  make(map[string]bool),
	}
}

// OrderOpened marks the order as the currently open one and reconciles its
// view-tracking state. A notification delivery failure is logged and the
// optimistic flip stands; the provider is never notified twice for one quote.
func (r *Reconciler) OrderOpened(ctx context.Context, orderNumber string) error {
	order, ok := r.store.Get(orderNumber)
	if !ok {
		return domainErrors.ErrOrderNotFound
	}
	r.store.Select(orderNumber)

	for _, quote := range order.Quotes {
		if quote.ViewedByCustomer {
			continue
		}
		if !r.store.MarkQuoteViewed(orderNumber, quote.ID) {
			continue
		}
		r.emit(ctx, orderNumber, quote.ID, quote.ProviderID)
	}
	return nil
}

func (r *Reconciler) emit(ctx context.Context, orderNumber, quoteID, providerID string) {
	r.mu.Lock()
	if r.emitted[quoteID] {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	notification := marketplace.ViewNotification{
		ID:          uuid.NewString(),
		Type:        NotificationTypeQuoteViewed,
		OrderNumber: orderNumber,
		QuoteID:     quoteID,
		ProviderID:  providerID,
		ViewedAt:    r.now(),
	}
	if err := r.notifier.NotifyQuoteViewed(ctx, notification); err != nil {
		r.logger.Error("quote viewed notification failed",
			slog.String("quote", quoteID),
			slog.String("error", err.Error()))
		return
	}

	r.mu.Lock()
	r.emitted[quoteID] = true
	r.mu.Unlock()
}
