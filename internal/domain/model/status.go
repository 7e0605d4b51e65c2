package model

import "strings"

// Status describes the canonical order lifecycle state.
type Status string

const (
	StatusUnknown          Status = ""
	StatusPending          Status = "pending"
	StatusPaymentPending   Status = "payment_pending"
	StatusProcessing       Status = "processing"
	StatusProviderReceived Status = "provider_received"
	StatusShipped          Status = "shipped"
	StatusOutForDelivery   Status = "out_for_delivery"
	StatusDelivered        Status = "delivered"
	StatusReadyForPickup   Status = "ready_for_pickup"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

// legacyStatuses maps textual (localized) wire values onto canonical states.
// Ordering comparisons must never be made against raw legacy strings.
var legacyStatuses = map[string]Status{
	"pending":           StatusPending,
	"awaiting quotes":   StatusPending,
	"payment pending":   StatusPaymentPending,
	"awaiting payment":  StatusPaymentPending,
	"processing":        StatusProcessing,
	"in progress":       StatusProcessing,
	"provider received": StatusProviderReceived,
	"received by provider": StatusProviderReceived,
	"shipped":           StatusShipped,
	"out for delivery":  StatusOutForDelivery,
	"delivered":         StatusDelivered,
	"ready for pickup":  StatusReadyForPickup,
	"completed":         StatusCompleted,
	"done":              StatusCompleted,
	"cancelled":         StatusCancelled,
	"canceled":          StatusCancelled,
	"قيد الانتظار":      StatusPending,
	"بانتظار الدفع":     StatusPaymentPending,
	"قيد المعالجة":      StatusProcessing,
	"تم الاستلام من المورد": StatusProviderReceived,
	"تم الشحن":          StatusShipped,
	"قيد التوصيل":       StatusOutForDelivery,
	"تم التوصيل":        StatusDelivered,
	"جاهز للاستلام":     StatusReadyForPickup,
	"مكتمل":             StatusCompleted,
	"ملغي":              StatusCancelled,
}

// ParseStatus maps a raw wire value to a canonical status. Canonical spellings
// pass through; legacy textual labels are translated; anything else is unknown.
func ParseStatus(raw string) Status {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	canonical := Status(strings.ReplaceAll(strings.ReplaceAll(trimmed, " ", "_"), "-", "_"))
	switch canonical {
	case StatusPending, StatusPaymentPending, StatusProcessing, StatusProviderReceived,
		StatusShipped, StatusOutForDelivery, StatusDelivered,
		StatusReadyForPickup, StatusCompleted, StatusCancelled:
		return canonical
	}
	if mapped, ok := legacyStatuses[trimmed]; ok {
		return mapped
	}
	return StatusUnknown
}

// statusRanks aligns the shipping and pickup flows on one progression axis:
// ready_for_pickup sits where shipped does and completed where delivered does.
var statusRanks = map[Status]int{
	StatusPending:          0,
	StatusPaymentPending:   1,
	StatusProcessing:       2,
	StatusProviderReceived: 3,
	StatusShipped:          4,
	StatusReadyForPickup:   4,
	StatusOutForDelivery:   5,
	StatusDelivered:        6,
	StatusCompleted:        6,
}

// Rank returns the progression index used for ordering comparisons.
// Unknown and cancelled states rank below every live state.
func (s Status) Rank() int {
	if rank, ok := statusRanks[s]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether the order has progressed to other's stage or past it.
func (s Status) AtLeast(other Status) bool {
	return s.Rank() >= 0 && other.Rank() >= 0 && s.Rank() >= other.Rank()
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether the order may still transition to cancelled.
func (s Status) Cancellable() bool {
	return s != StatusUnknown && !s.Terminal()
}
