// Package realtime routes per-user push events to refresh triggers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Event categories delivered on the per-user channel. All of them have the
// same effect: schedule a refresh.
const (
	EventQuoteReceived      = "quote.received"
	EventOrderStatusUpdated = "order.status.updated"
	EventPaymentUpdated     = "payment.updated"
	EventUserNotification   = "user.notification"
)

// Event is a named frame delivered on a channel. The manager never interprets
// Data beyond the type tag of generic user notifications.
type Event struct {
	Name    string          `json:"event"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// Transport delivers events for a named channel until ctx is cancelled, at
// which point it closes the returned stream.
type Transport interface {
	Subscribe(ctx context.Context, channel string) (<-chan Event, error)
}

// Scheduler is the single action events map to.
type Scheduler interface {
	Schedule()
}

// Manager holds at most one subscription, keyed user.{id}. Subscribing for a
// new identity releases the previous subscription first; Release tears the
// current one down deterministically. In-flight fetches triggered by routed
// events are not cancelled — the refresher's generation guard makes orphaned
// responses harmless.
type Manager struct {
	transport Transport
	scheduler Scheduler
	logger    *slog.Logger

	mu     sync.Mutex
	userID string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager constructs a subscription manager.
func NewManager(transport Transport, scheduler Scheduler, logger *slog.Logger) *Manager {
	return &Manager{transport: transport, scheduler: scheduler, logger: logger}
}

// Subscribe opens the subscription for the given user identity. Calling it
// again with the same identity is a no-op; a different identity swaps the
// subscription.
func (m *Manager) Subscribe(ctx context.Context, userID string) error {
	m.mu.Lock()
	if m.cancel != nil && m.userID == userID {
		m.mu.Unlock()
		return nil
	}
	prev := m.cancel
	m.cancel = nil
	m.userID = ""
	m.mu.Unlock()

	if prev != nil {
		prev()
		m.wg.Wait()
	}

	channel := fmt.Sprintf("user.%s", userID)
	subCtx, cancel := context.WithCancel(ctx)
	events, err := m.transport.Subscribe(subCtx, channel)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	m.mu.Lock()
	m.userID = userID
	m.cancel = cancel
	m.mu.Unlock()

	m.logger.Info("realtime subscription opened", slog.String("channel", channel))
	m.wg.Add(1)
	go m.route(subCtx, channel, events)
	return nil
}

// Release tears down the current subscription and waits for event routing to
// stop. Safe to call repeatedly.
func (m *Manager) Release() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.userID = ""
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Manager) route(ctx context.Context, channel string, events <-chan Event) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				m.logger.Info("realtime stream closed", slog.String("channel", channel))
				return
			}
			if !OrderRelevant(ev) {
				continue
			}
			m.logger.Debug("order-relevant event", slog.String("event", ev.Name))
			m.scheduler.Schedule()
		}
	}
}

// OrderRelevant reports whether an event should trigger a refresh. The three
// dedicated categories always do; a generic user notification counts only
// when its type tag mentions orders, quotes, or payments.
func OrderRelevant(ev Event) bool {
	switch ev.Name {
	case EventQuoteReceived, EventOrderStatusUpdated, EventPaymentUpdated:
		return true
	case EventUserNotification:
		var payload struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			return false
		}
		tag := strings.ToUpper(payload.Type)
		return strings.Contains(tag, "ORDER") ||
			strings.Contains(tag, "QUOTE") ||
			strings.Contains(tag, "PAYMENT")
	}
	return false
}
