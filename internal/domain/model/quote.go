package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartStatus describes the condition of the offered part.
type PartStatus string

const (
	PartStatusNew  PartStatus = "new"
	PartStatusUsed PartStatus = "used"
)

// PartSize drives the shipping cost lookup.
type PartSize string

const (
	PartSizeSmall  PartSize = "small"
	PartSizeMedium PartSize = "medium"
	PartSizeLarge  PartSize = "large"
)

// Media groups the attachments a provider submitted with a quote.
type Media struct {
	Images    []string `json:"images,omitempty"`
	Video     string   `json:"video,omitempty"`
	VoiceNote string   `json:"voiceNote,omitempty"`
}

// Quote is a price offer submitted by a provider against an order.
type Quote struct {
	ID               string          `json:"id"`
	ProviderID       string          `json:"providerId"`
	ProviderUniqueID string          `json:"providerUniqueId"`
	Price            decimal.Decimal `json:"price"`
	PartStatus       PartStatus      `json:"partStatus"`
	PartSizeCategory PartSize        `json:"partSizeCategory"`
	Notes            string          `json:"notes,omitempty"`
	Media            Media           `json:"media"`
	CreatedAt        time.Time       `json:"timestamp"`
	ViewedByCustomer bool            `json:"viewedByCustomer"`
}

// Expired reports whether the quote's validity window has elapsed.
// Expired quotes can no longer be accepted.
func (q Quote) Expired(now time.Time, validity time.Duration) bool {
	if validity <= 0 || q.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(q.CreatedAt) > validity
}

// Same reports whether other identifies this quote. Quote ids are the primary
// identity; legacy records fall back to creation-timestamp equality.
func (q Quote) Same(other Quote) bool {
	if q.ID != "" && other.ID != "" {
		return q.ID == other.ID
	}
	return !q.CreatedAt.IsZero() && q.CreatedAt.Equal(other.CreatedAt)
}

// Clone returns a deep copy safe to hand outside the store.
func (q Quote) Clone() Quote {
	copied := q
	if len(q.Media.Images) > 0 {
		copied.Media.Images = append([]string(nil), q.Media.Images...)
	}
	return copied
}
