package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryMethod selects between the shipping and pickup flows.
type DeliveryMethod string

const (
	DeliveryShipping DeliveryMethod = "shipping"
	DeliveryPickup   DeliveryMethod = "pickup"
)

// PaymentMethodCashOnDelivery is the sentinel payment method that waives the
// receipt requirement at acceptance time.
const PaymentMethodCashOnDelivery = "cash_on_delivery"

// FormData is the original part request payload. Immutable after creation.
type FormData struct {
	CarMake         string `json:"carMake"`
	CarModel        string `json:"carModel"`
	CarYear         string `json:"carYear"`
	PartDescription string `json:"partDescription"`
}

// Review is left by the customer after order completion.
type Review struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Order is a customer's part-sourcing request and its full lifecycle state.
// Quotes preserve arrival order; price ordering is a presentation concern.
type Order struct {
	OrderNumber       string          `json:"orderNumber"`
	Status            Status          `json:"status"`
	FormData          FormData        `json:"formData"`
	Quotes            []Quote         `json:"quotes"`
	AcceptedQuote     *Quote          `json:"acceptedQuote,omitempty"`
	PaymentMethodID   string          `json:"paymentMethodId,omitempty"`
	PaymentMethodName string          `json:"paymentMethodName,omitempty"`
	DeliveryMethod    DeliveryMethod  `json:"deliveryMethod,omitempty"`
	ShippingPrice     decimal.Decimal `json:"shippingPrice"`
	CustomerName      string          `json:"customerName,omitempty"`
	CustomerAddress   string          `json:"customerAddress,omitempty"`
	CustomerCity      string          `json:"customerCity,omitempty"`
	CustomerPhone     string          `json:"customerPhone,omitempty"`
	RejectionReason   string          `json:"rejectionReason,omitempty"`
	Review            *Review         `json:"review,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Quote returns the quote with the given id, if present.
func (o Order) Quote(id string) (Quote, bool) {
	for _, q := range o.Quotes {
		if q.ID == id {
			return q, true
		}
	}
	return Quote{}, false
}

// AcceptedQuoteListed reports whether the accepted quote identifies an element
// of Quotes. A false result on a populated accepted quote is a data-integrity
// problem on the wire, not a local state to preserve.
func (o Order) AcceptedQuoteListed() bool {
	if o.AcceptedQuote == nil {
		return true
	}
	for _, q := range o.Quotes {
		if q.Same(*o.AcceptedQuote) {
			return true
		}
	}
	return false
}

// ReceiptRejected reports whether the submitted payment receipt was rejected
// and a reupload is required.
func (o Order) ReceiptRejected() bool {
	return o.RejectionReason != ""
}

// Clone returns a deep copy safe to hand outside the store.
func (o Order) Clone() Order {
	copied := o
	if len(o.Quotes) > 0 {
		copied.Quotes = make([]Quote, len(o.Quotes))
		for i, q := range o.Quotes {
			copied.Quotes[i] = q.Clone()
		}
	}
	if o.AcceptedQuote != nil {
		accepted := o.AcceptedQuote.Clone()
		copied.AcceptedQuote = &accepted
	}
	if o.Review != nil {
		review := *o.Review
		copied.Review = &review
	}
	return copied
}
