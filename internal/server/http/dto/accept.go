package dto

// AttachmentPayload carries an uploaded file as base64 data.
type AttachmentPayload struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

// AcceptRequest is the body of POST /api/orders/:number/accept.
type AcceptRequest struct {
	QuoteID           string             `json:"quoteId"`
	DeliveryMethod    string             `json:"deliveryMethod"`
	PaymentMethodID   string             `json:"paymentMethodId"`
	PaymentMethodName string             `json:"paymentMethodName"`
	CustomerName      string             `json:"customerName"`
	CustomerAddress   string             `json:"customerAddress"`
	CustomerCity      string             `json:"customerCity"`
	CustomerPhone     string             `json:"customerPhone"`
	PaymentReceipt    *AttachmentPayload `json:"paymentReceipt,omitempty"`
}

// ReceiptRequest is the body of POST /api/orders/:number/receipt.
type ReceiptRequest struct {
	PaymentReceipt AttachmentPayload `json:"paymentReceipt"`
}

// ShippingCostResponse reports the delivery price for a city and part size.
type ShippingCostResponse struct {
	ShippingPrice string `json:"shippingPrice"`
}

// ErrorResponse is the uniform error body. Field is set for validation
// failures tied to a single input.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
