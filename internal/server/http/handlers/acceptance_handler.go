package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmawad/partsync/internal/acceptance"
	"github.com/rmawad/partsync/internal/adapter/marketplace"
	"github.com/rmawad/partsync/internal/domain/model"
	"github.com/rmawad/partsync/internal/server/http/dto"
)

// AcceptanceHandler manages the quote acceptance and receipt reupload flows.
type AcceptanceHandler struct {
	facade AcceptanceFacade
	orders OrderFacade
}

// NewAcceptanceHandler constructs AcceptanceHandler.
func NewAcceptanceHandler(facade AcceptanceFacade, orders OrderFacade) *AcceptanceHandler {
	return &AcceptanceHandler{facade: facade, orders: orders}
}

// Accept handles POST /api/orders/:number/accept.
func (h *AcceptanceHandler) Accept(c *gin.Context) {
	var body dto.AcceptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}

	receipt, err := toAttachment(body.PaymentReceipt)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "payment receipt is not valid base64", Field: "payment_receipt"})
		return
	}

	req := acceptance.Request{
		OrderNumber:       c.Param("number"),
		QuoteID:           body.QuoteID,
		DeliveryMethod:    model.DeliveryMethod(body.DeliveryMethod),
		PaymentMethodID:   body.PaymentMethodID,
		PaymentMethodName: body.PaymentMethodName,
		CustomerName:      body.CustomerName,
		CustomerAddress:   body.CustomerAddress,
		CustomerCity:      body.CustomerCity,
		CustomerPhone:     body.CustomerPhone,
		Receipt:           receipt,
	}

	if err := h.facade.Accept(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Receipt handles POST /api/orders/:number/receipt.
func (h *AcceptanceHandler) Receipt(c *gin.Context) {
	var body dto.ReceiptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}

	receipt, err := toAttachment(&body.PaymentReceipt)
	if err != nil || receipt == nil || len(receipt.Data) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "payment receipt is required", Field: "payment_receipt"})
		return
	}

	if err := h.facade.ReuploadReceipt(c.Request.Context(), c.Param("number"), *receipt); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ShippingCost handles GET /api/orders/:number/shipping-cost. The price comes
// from the same lookup the acceptance submission uses, so the previewed total
// always matches what would be submitted.
func (h *AcceptanceHandler) ShippingCost(c *gin.Context) {
	order, ok := h.orders.Order(c.Param("number"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
		return
	}

	quote, ok := order.Quote(c.Query("quote"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "quote not found"})
		return
	}

	city := c.Query("city")
	if city == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "city is required", Field: "customer_city"})
		return
	}

	cost := h.facade.ShippingCost(city, quote.PartSizeCategory)
	c.JSON(http.StatusOK, dto.ShippingCostResponse{ShippingPrice: cost.String()})
}

func toAttachment(payload *dto.AttachmentPayload) (*marketplace.Attachment, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return nil, err
	}
	return &marketplace.Attachment{
		FileName:    payload.FileName,
		ContentType: payload.ContentType,
		Data:        data,
	}, nil
}
