// Package store holds the authoritative in-memory order collection for the
// current user. Writes arrive only from the refresher's commit step; readers
// are the HTTP layer and the reconciler.
package store

import (
	"sync"

	"github.com/rmawad/partsync/internal/domain/model"
)

// OrderStore keeps the committed order set plus a speculative overlay for
// optimistic view-tracking flips. The overlay survives authoritative swaps so
// a refresh can never regress a monotonic field: authoritative data always
// wins, except viewedByCustomer never goes true→false.
type OrderStore struct {
	mu       sync.RWMutex
	orders   []model.Order
	index    map[string]int
	selected string
	viewed   map[string]map[string]bool
	version  uint64
}

// NewOrderStore constructs an empty store.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		index:  make(map[string]int),
		viewed: make(map[string]map[string]bool),
	}
}

// ReplaceAll atomically swaps the authoritative collection. The incoming set
// is the full, current truth; there are no partial merges. Previously known
// viewed flags and overlay entries are folded into the fresh records, and the
// selection re-points to the fresh object with the same order number, falling
// back to the first order when it disappeared.
func (s *OrderStore) ReplaceAll(orders []model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]model.Order, len(orders))
	index := make(map[string]int, len(orders))
	for i, order := range orders {
		copied := order.Clone()
		s.mergeViewed(&copied)
		fresh[i] = copied
		index[copied.OrderNumber] = i
	}

	s.orders = fresh
	s.index = index
	s.version++

	if _, ok := index[s.selected]; !ok {
		s.selected = ""
		if len(fresh) > 0 {
			s.selected = fresh[0].OrderNumber
		}
	}

	// Drop overlay entries for orders the server no longer reports.
	for number := range s.viewed {
		if _, ok := index[number]; !ok {
			delete(s.viewed, number)
		}
	}
}

func (s *OrderStore) mergeViewed(fresh *model.Order) {
	overlay := s.viewed[fresh.OrderNumber]
	var previous model.Order
	hasPrevious := false
	if i, ok := s.index[fresh.OrderNumber]; ok {
		previous = s.orders[i]
		hasPrevious = true
	}

	for qi := range fresh.Quotes {
		quote := &fresh.Quotes[qi]
		if quote.ViewedByCustomer {
			// Authoritative confirmation; the overlay entry is done.
			delete(overlay, quote.ID)
			continue
		}
		if overlay[quote.ID] {
			quote.ViewedByCustomer = true
			continue
		}
		if hasPrevious {
			if prev, ok := previous.Quote(quote.ID); ok && prev.ViewedByCustomer {
				quote.ViewedByCustomer = true
			}
		}
	}
	if len(overlay) == 0 {
		delete(s.viewed, fresh.OrderNumber)
	}
}

// Get returns the order with the given number, if present.
func (s *OrderStore) Get(orderNumber string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[orderNumber]
	if !ok {
		return model.Order{}, false
	}
	return s.orders[i].Clone(), true
}

// Orders returns the committed collection in arrival order.
func (s *OrderStore) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]model.Order, len(s.orders))
	for i, order := range s.orders {
		orders[i] = order.Clone()
	}
	return orders
}

// Select marks the order as currently open. Returns false when it is unknown.
func (s *OrderStore) Select(orderNumber string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[orderNumber]; !ok {
		return false
	}
	s.selected = orderNumber
	return true
}

// Selected returns the currently selected order. After a ReplaceAll this is
// always the fresh object, never a stale reference.
func (s *OrderStore) Selected() (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[s.selected]
	if !ok {
		return model.Order{}, false
	}
	return s.orders[i].Clone(), true
}

// MarkQuoteViewed optimistically flips a quote's viewed flag through the
// overlay. Returns true only when the flag actually changed.
func (s *OrderStore) MarkQuoteViewed(orderNumber, quoteID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[orderNumber]
	if !ok {
		return false
	}
	order := &s.orders[i]
	for qi := range order.Quotes {
		quote := &order.Quotes[qi]
		if quote.ID != quoteID {
			continue
		}
		if quote.ViewedByCustomer {
			return false
		}
		quote.ViewedByCustomer = true
		if s.viewed[orderNumber] == nil {
			s.viewed[orderNumber] = make(map[string]bool)
		}
		s.viewed[orderNumber][quoteID] = true
		return true
	}
	return false
}

// Version returns the swap counter. It increments once per ReplaceAll.
func (s *OrderStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of committed orders.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
