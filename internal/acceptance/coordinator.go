// Package acceptance executes the transaction that turns a quote into an
// accepted order, including the receipt-rejection/reupload sub-flow.
package acceptance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmawad/partsync/internal/adapter/marketplace"
	domainErrors "github.com/rmawad/partsync/internal/domain/errors"
	"github.com/rmawad/partsync/internal/domain/model"
	"github.com/rmawad/partsync/internal/store"
)

// Request carries the customer's acceptance inputs.
type Request struct {
	OrderNumber       string
	QuoteID           string
	DeliveryMethod    model.DeliveryMethod
	PaymentMethodID   string
	PaymentMethodName string
	CustomerName      string
	CustomerAddress   string
	CustomerCity      string
	CustomerPhone     string
	Receipt           *marketplace.Attachment
}

// Submitter performs the atomic acceptQuote call.
type Submitter interface {
	AcceptQuote(ctx context.Context, orderNumber string, submission marketplace.AcceptanceSubmission) error
}

// RefreshTrigger forces a snapshot refresh after a successful transaction.
type RefreshTrigger interface {
	Refresh(ctx context.Context, force bool) error
}

// Coordinator validates and executes acceptance transactions. The server is
// the sole source of truth for the resulting order state: after a successful
// submission the coordinator forces a full refresh instead of hand-building
// the updated order.
type Coordinator struct {
	store     *store.OrderStore
	client    Submitter
	refresher RefreshTrigger
	shipping  ShippingTable
	validity  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewCoordinator constructs a coordinator.
func NewCoordinator(orderStore *store.OrderStore, client Submitter, refresher RefreshTrigger, shipping ShippingTable, validity time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:     orderStore,
		client:    client,
		refresher: refresher,
		shipping:  shipping,
		validity:  validity,
		logger:    logger,
		now:       time.Now,
	}
}

// Accept validates the request and submits the acceptance transaction.
// Validation is fail-fast and produces field-specific errors before any
// network call; nothing is partially submitted.
func (c *Coordinator) Accept(ctx context.Context, req Request) error {
	order, ok := c.store.Get(req.OrderNumber)
	if !ok {
		return domainErrors.ErrOrderNotFound
	}
	if order.Status != model.StatusPending {
		return domainErrors.ErrOrderNotPending
	}

	quote, ok := order.Quote(req.QuoteID)
	if !ok {
		return domainErrors.ErrQuoteNotFound
	}
	if quote.Expired(c.now(), c.validity) {
		return domainErrors.ErrQuoteExpired
	}

	if err := validate(req); err != nil {
		return err
	}

	submission := c.buildSubmission(req, quote)
	if err := c.client.AcceptQuote(ctx, req.OrderNumber, submission); err != nil {
		return fmt.Errorf("accept quote: %w", err)
	}

	c.logger.Info("quote accepted",
		slog.String("order", req.OrderNumber),
		slog.String("quote", req.QuoteID),
		slog.String("delivery", string(req.DeliveryMethod)))
	c.forceRefresh(ctx)
	return nil
}

// Reupload resubmits the acceptance transaction with a fresh receipt. It is
// allowed only while the order carries a rejection reason and reuses the
// payment and delivery details already stored on the order.
func (c *Coordinator) Reupload(ctx context.Context, orderNumber string, receipt marketplace.Attachment) error {
	order, ok := c.store.Get(orderNumber)
	if !ok {
		return domainErrors.ErrOrderNotFound
	}
	if !order.ReceiptRejected() {
		return domainErrors.ErrNoRejectedReceipt
	}
	if order.AcceptedQuote == nil {
		return domainErrors.ErrQuoteNotFound
	}

	pickup := order.DeliveryMethod == model.DeliveryPickup
	submission := marketplace.AcceptanceSubmission{
		QuoteID:           order.AcceptedQuote.ID,
		PaymentMethodID:   order.PaymentMethodID,
		PaymentMethodName: order.PaymentMethodName,
		DeliveryMethod:    string(order.DeliveryMethod),
		ShippingPrice:     order.ShippingPrice,
		PaymentReceipt:    &receipt,
	}
	if !pickup {
		submission.CustomerName = order.CustomerName
		submission.CustomerAddress = order.CustomerAddress
		submission.CustomerPhone = order.CustomerPhone
	}

	if err := c.client.AcceptQuote(ctx, orderNumber, submission); err != nil {
		return fmt.Errorf("reupload receipt: %w", err)
	}

	c.logger.Info("receipt reuploaded", slog.String("order", orderNumber))
	c.forceRefresh(ctx)
	return nil
}

// ShippingCost prices delivery for a city and part size. It is the same
// lookup the submission path uses, so the live total can never diverge from
// the submitted price.
func (c *Coordinator) ShippingCost(city string, size model.PartSize) decimal.Decimal {
	return c.shipping.Cost(city, size)
}

func validate(req Request) error {
	switch req.DeliveryMethod {
	case model.DeliveryShipping, model.DeliveryPickup:
	default:
		return domainErrors.NewFieldError("delivery_method", "choose shipping or pickup")
	}

	if req.DeliveryMethod == model.DeliveryShipping {
		if req.CustomerName == "" {
			return domainErrors.NewFieldError("customer_name", "name is required for shipping")
		}
		if req.CustomerAddress == "" {
			return domainErrors.NewFieldError("customer_address", "address is required for shipping")
		}
		if req.CustomerPhone == "" {
			return domainErrors.NewFieldError("customer_phone", "phone is required for shipping")
		}
	}

	if req.PaymentMethodID == "" {
		return domainErrors.NewFieldError("payment_method_id", "select a payment method")
	}

	if req.PaymentMethodID != model.PaymentMethodCashOnDelivery && req.Receipt == nil {
		return domainErrors.NewFieldError("payment_receipt", "payment receipt is required")
	}

	return nil
}

func (c *Coordinator) buildSubmission(req Request, quote model.Quote) marketplace.AcceptanceSubmission {
	submission := marketplace.AcceptanceSubmission{
		QuoteID:           req.QuoteID,
		PaymentMethodID:   req.PaymentMethodID,
		PaymentMethodName: req.PaymentMethodName,
		DeliveryMethod:    string(req.DeliveryMethod),
		ShippingPrice:     decimal.Zero,
		PaymentReceipt:    req.Receipt,
	}
	if req.DeliveryMethod == model.DeliveryShipping {
		submission.CustomerName = req.CustomerName
		submission.CustomerAddress = req.CustomerAddress
		submission.CustomerPhone = req.CustomerPhone
		submission.ShippingPrice = c.shipping.Cost(req.CustomerCity, quote.PartSizeCategory)
	}
	return submission
}

func (c *Coordinator) forceRefresh(ctx context.Context) {
	if err := c.refresher.Refresh(ctx, true); err != nil {
		// The transaction itself succeeded; the list is stale until the next
		// successful refresh.
		c.logger.Warn("post-transaction refresh failed", slog.String("error", err.Error()))
	}
}
