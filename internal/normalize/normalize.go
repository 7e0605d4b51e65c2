// Package normalize maps heterogeneous wire records onto the canonical model.
// The marketplace API emits records under two naming conventions, sometimes
// mixed within one payload; every path raw records enter the engine goes
// through this package and nowhere else.
package normalize

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmawad/partsync/internal/domain/model"
)

// RawOrder mirrors an order record as it appears on the wire. Each field is
// available under the preferred camelCase key or the snake_case fallback; the
// camelCase value wins when both are present, and absence is not an error.
type RawOrder struct {
	OrderNumber    *string `json:"orderNumber"`
	OrderNumberAlt *string `json:"order_number"`

	Status *string `json:"status"`

	FormData    *RawFormData `json:"formData"`
	FormDataAlt *RawFormData `json:"form_data"`

	Quotes []RawQuote `json:"quotes"`

	AcceptedQuote    *RawQuote `json:"acceptedQuote"`
	AcceptedQuoteAlt *RawQuote `json:"accepted_quote"`

	PaymentMethodID    *string `json:"paymentMethodId"`
	PaymentMethodIDAlt *string `json:"payment_method_id"`

	PaymentMethodName    *string `json:"paymentMethodName"`
	PaymentMethodNameAlt *string `json:"payment_method_name"`

	DeliveryMethod    *string `json:"deliveryMethod"`
	DeliveryMethodAlt *string `json:"delivery_method"`

	ShippingPrice    *decimal.Decimal `json:"shippingPrice"`
	ShippingPriceAlt *decimal.Decimal `json:"shipping_price"`

	CustomerName    *string `json:"customerName"`
	CustomerNameAlt *string `json:"customer_name"`

	CustomerAddress    *string `json:"customerAddress"`
	CustomerAddressAlt *string `json:"customer_address"`

	CustomerCity    *string `json:"customerCity"`
	CustomerCityAlt *string `json:"customer_city"`

	CustomerPhone    *string `json:"customerPhone"`
	CustomerPhoneAlt *string `json:"customer_phone"`

	RejectionReason    *string `json:"rejectionReason"`
	RejectionReasonAlt *string `json:"rejection_reason"`

	Review *RawReview `json:"review"`

	CreatedAt    *time.Time `json:"createdAt"`
	CreatedAtAlt *time.Time `json:"created_at"`
}

// RawQuote mirrors a quote record on the wire.
type RawQuote struct {
	ID    *string `json:"id"`
	IDAlt *string `json:"quote_id"`

	ProviderID    *string `json:"providerId"`
	ProviderIDAlt *string `json:"provider_id"`

	ProviderUniqueID    *string `json:"providerUniqueId"`
	ProviderUniqueIDAlt *string `json:"provider_unique_id"`

	Price *decimal.Decimal `json:"price"`

	PartStatus    *string `json:"partStatus"`
	PartStatusAlt *string `json:"part_status"`

	PartSizeCategory    *string `json:"partSizeCategory"`
	PartSizeCategoryAlt *string `json:"part_size_category"`

	Notes *string `json:"notes"`

	Media    *RawMedia `json:"media"`
	MediaAlt *RawMedia `json:"media_files"`

	Timestamp    *time.Time `json:"timestamp"`
	TimestampAlt *time.Time `json:"created_at"`

	ViewedByCustomer    *bool `json:"viewedByCustomer"`
	ViewedByCustomerAlt *bool `json:"viewed_by_customer"`
}

// RawMedia mirrors quote attachments on the wire.
type RawMedia struct {
	Images []string `json:"images"`

	Video *string `json:"video"`

	VoiceNote    *string `json:"voiceNote"`
	VoiceNoteAlt *string `json:"voice_note"`
}

// RawFormData mirrors the original request payload on the wire.
type RawFormData struct {
	CarMake    *string `json:"carMake"`
	CarMakeAlt *string `json:"car_make"`

	CarModel    *string `json:"carModel"`
	CarModelAlt *string `json:"car_model"`

	CarYear    *string `json:"carYear"`
	CarYearAlt *string `json:"car_year"`

	PartDescription    *string `json:"partDescription"`
	PartDescriptionAlt *string `json:"part_description"`
}

// RawReview mirrors a customer review on the wire.
type RawReview struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// DecodeOrders parses a JSON array of raw order records.
func DecodeOrders(data []byte) ([]RawOrder, error) {
	var raws []RawOrder
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

// Orders normalizes a full wire snapshot into canonical orders.
func Orders(raws []RawOrder) []model.Order {
	orders := make([]model.Order, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, Order(raw))
	}
	return orders
}

// Order normalizes one wire record into the canonical model.
func Order(raw RawOrder) model.Order {
	order := model.Order{
		OrderNumber:       str(raw.OrderNumber, raw.OrderNumberAlt),
		Status:            model.ParseStatus(str(raw.Status, nil)),
		FormData:          formData(first(raw.FormData, raw.FormDataAlt)),
		PaymentMethodID:   str(raw.PaymentMethodID, raw.PaymentMethodIDAlt),
		PaymentMethodName: str(raw.PaymentMethodName, raw.PaymentMethodNameAlt),
		DeliveryMethod:    model.DeliveryMethod(str(raw.DeliveryMethod, raw.DeliveryMethodAlt)),
		ShippingPrice:     dec(raw.ShippingPrice, raw.ShippingPriceAlt),
		CustomerName:      str(raw.CustomerName, raw.CustomerNameAlt),
		CustomerAddress:   str(raw.CustomerAddress, raw.CustomerAddressAlt),
		CustomerCity:      str(raw.CustomerCity, raw.CustomerCityAlt),
		CustomerPhone:     str(raw.CustomerPhone, raw.CustomerPhoneAlt),
		RejectionReason:   str(raw.RejectionReason, raw.RejectionReasonAlt),
		CreatedAt:         when(raw.CreatedAt, raw.CreatedAtAlt),
	}

	order.Quotes = make([]model.Quote, 0, len(raw.Quotes))
	for _, rq := range raw.Quotes {
		order.Quotes = append(order.Quotes, Quote(rq))
	}

	if accepted := first(raw.AcceptedQuote, raw.AcceptedQuoteAlt); accepted != nil {
		quote := Quote(*accepted)
		order.AcceptedQuote = &quote
	}

	if raw.Review != nil {
		order.Review = &model.Review{
			Rating:  num(raw.Review.Rating),
			Comment: str(raw.Review.Comment, nil),
		}
	}

	return order
}

// Quote normalizes one wire quote. A missing viewedByCustomer defaults to
// false here; the store merge is responsible for never regressing a previous
// true.
func Quote(raw RawQuote) model.Quote {
	quote := model.Quote{
		ID:               str(raw.ID, raw.IDAlt),
		ProviderID:       str(raw.ProviderID, raw.ProviderIDAlt),
		ProviderUniqueID: str(raw.ProviderUniqueID, raw.ProviderUniqueIDAlt),
		Price:            dec(raw.Price, nil),
		PartStatus:       model.PartStatus(str(raw.PartStatus, raw.PartStatusAlt)),
		PartSizeCategory: model.PartSize(str(raw.PartSizeCategory, raw.PartSizeCategoryAlt)),
		Notes:            str(raw.Notes, nil),
		CreatedAt:        when(raw.Timestamp, raw.TimestampAlt),
		ViewedByCustomer: boolean(raw.ViewedByCustomer, raw.ViewedByCustomerAlt),
	}

	if media := first(raw.Media, raw.MediaAlt); media != nil {
		quote.Media = model.Media{
			Images:    append([]string(nil), media.Images...),
			Video:     str(media.Video, nil),
			VoiceNote: str(media.VoiceNote, media.VoiceNoteAlt),
		}
	}

	return quote
}

func first[T any](preferred, fallback *T) *T {
	if preferred != nil {
		return preferred
	}
	return fallback
}

func str(preferred, fallback *string) string {
	if v := first(preferred, fallback); v != nil {
		return *v
	}
	return ""
}

func dec(preferred, fallback *decimal.Decimal) decimal.Decimal {
	if v := first(preferred, fallback); v != nil {
		return *v
	}
	return decimal.Zero
}

func when(preferred, fallback *time.Time) time.Time {
	if v := first(preferred, fallback); v != nil {
		return *v
	}
	return time.Time{}
}

func boolean(preferred, fallback *bool) bool {
	if v := first(preferred, fallback); v != nil {
		return *v
	}
	return false
}

func num(v *int) int {
	if v != nil {
		return *v
	}
	return 0
}

func formData(raw *RawFormData) model.FormData {
	if raw == nil {
		return model.FormData{}
	}
	return model.FormData{
		CarMake:         str(raw.CarMake, raw.CarMakeAlt),
		CarModel:        str(raw.CarModel, raw.CarModelAlt),
		CarYear:         str(raw.CarYear, raw.CarYearAlt),
		PartDescription: str(raw.PartDescription, raw.PartDescriptionAlt),
	}
}
