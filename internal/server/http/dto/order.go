// Package dto defines the JSON shapes served by the local HTTP API.
package dto

import (
	"sort"
	"time"

	"github.com/rmawad/partsync/internal/domain/model"
)

// QuoteResponse is a provider quote prepared for display: price-ordered by
// the caller, with expiry and cheapest-badge flags precomputed.
type QuoteResponse struct {
	ID               string    `json:"id"`
	ProviderID       string    `json:"providerId"`
	Price            string    `json:"price"`
	PartStatus       string    `json:"partStatus"`
	PartSizeCategory string    `json:"partSizeCategory"`
	Notes            string    `json:"notes,omitempty"`
	Images           []string  `json:"images,omitempty"`
	Video            string    `json:"video,omitempty"`
	VoiceNote        string    `json:"voiceNote,omitempty"`
	CreatedAt        time.Time `json:"timestamp"`
	ViewedByCustomer bool      `json:"viewedByCustomer"`
	Expired          bool      `json:"expired"`
	Cheapest         bool      `json:"cheapest"`
}

// FormDataResponse echoes the original part request.
type FormDataResponse struct {
	CarMake         string `json:"carMake"`
	CarModel        string `json:"carModel"`
	CarYear         string `json:"carYear"`
	PartDescription string `json:"partDescription"`
}

// ReviewResponse is the customer's post-completion review.
type ReviewResponse struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// OrderResponse is an order prepared for display.
type OrderResponse struct {
	Number          string           `json:"orderNumber"`
	Status          string           `json:"status"`
	StatusRank      int              `json:"statusRank"`
	FormData        FormDataResponse `json:"formData"`
	Quotes          []QuoteResponse  `json:"quotes"`
	AcceptedQuoteID string           `json:"acceptedQuoteId,omitempty"`
	DeliveryMethod  string           `json:"deliveryMethod,omitempty"`
	ShippingPrice   string           `json:"shippingPrice"`
	CustomerCity    string           `json:"customerCity,omitempty"`
	RejectionReason string           `json:"rejectionReason,omitempty"`
	Review          *ReviewResponse  `json:"review,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// NewOrderResponse builds the display shape for an order. Quotes are sorted by
// ascending price; the cheapest badge appears only when there is a real
// comparison to make, i.e. at least two quotes.
func NewOrderResponse(order model.Order, now time.Time, validity time.Duration) OrderResponse {
	ordered := make([]model.Quote, len(order.Quotes))
	copy(ordered, order.Quotes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Price.LessThan(ordered[j].Price)
	})

	quotes := make([]QuoteResponse, 0, len(ordered))
	for _, q := range ordered {
		quotes = append(quotes, QuoteResponse{
			ID:               q.ID,
			ProviderID:       q.ProviderID,
			Price:            q.Price.String(),
			PartStatus:       string(q.PartStatus),
			PartSizeCategory: string(q.PartSizeCategory),
			Notes:            q.Notes,
			Images:           q.Media.Images,
			Video:            q.Media.Video,
			VoiceNote:        q.Media.VoiceNote,
			CreatedAt:        q.CreatedAt,
			ViewedByCustomer: q.ViewedByCustomer,
			Expired:          q.Expired(now, validity),
		})
	}

	if len(quotes) >= 2 {
		quotes[0].Cheapest = true
	}

	response := OrderResponse{
		Number:     order.OrderNumber,
		Status:     string(order.Status),
		StatusRank: order.Status.Rank(),
		FormData: FormDataResponse{
			CarMake:         order.FormData.CarMake,
			CarModel:        order.FormData.CarModel,
			CarYear:         order.FormData.CarYear,
			PartDescription: order.FormData.PartDescription,
		},
		Quotes:          quotes,
		DeliveryMethod:  string(order.DeliveryMethod),
		ShippingPrice:   order.ShippingPrice.String(),
		CustomerCity:    order.CustomerCity,
		RejectionReason: order.RejectionReason,
		CreatedAt:       order.CreatedAt,
	}
	if order.AcceptedQuote != nil {
		response.AcceptedQuoteID = order.AcceptedQuote.ID
	}
	if order.Review != nil {
		response.Review = &ReviewResponse{Rating: order.Review.Rating, Comment: order.Review.Comment}
	}
	return response
}
