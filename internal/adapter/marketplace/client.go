// Package marketplace is the outbound REST adapter for the marketplace API.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/rmawad/partsync/internal/domain/errors"
	"github.com/rmawad/partsync/internal/normalize"
)

// ErrUnauthorized indicates the configured API token was rejected.
var ErrUnauthorized = errors.New("marketplace rejected credentials")

// Attachment is an uploaded file; Data is base64-encoded on the wire.
type Attachment struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// AcceptanceSubmission is the atomic acceptQuote payload, used for both the
// initial acceptance and the receipt reupload.
type AcceptanceSubmission struct {
	QuoteID           string          `json:"quote_id"`
	PaymentMethodID   string          `json:"payment_method_id"`
	PaymentMethodName string          `json:"payment_method_name"`
	DeliveryMethod    string          `json:"delivery_method"`
	CustomerName      string          `json:"customer_name"`
	CustomerAddress   string          `json:"customer_address"`
	CustomerPhone     string          `json:"customer_phone"`
	ShippingPrice     decimal.Decimal `json:"shipping_price"`
	PaymentReceipt    *Attachment     `json:"payment_receipt,omitempty"`
}

// ViewNotification tells a provider their quote was seen by the customer.
type ViewNotification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	OrderNumber string    `json:"order_number"`
	QuoteID     string    `json:"quote_id"`
	ProviderID  string    `json:"provider_id"`
	ViewedAt    time.Time `json:"viewed_at"`
}

// Client exposes the marketplace operations the engine consumes.
type Client interface {
	FetchOrders(ctx context.Context, force bool) ([]normalize.RawOrder, error)
	AcceptQuote(ctx context.Context, orderNumber string, submission AcceptanceSubmission) error
	NotifyQuoteViewed(ctx context.Context, notification ViewNotification) error
}

// HTTPClient implements Client against the REST API.
type HTTPClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates an HTTP marketplace client with a default timeout.
func NewHTTPClient(baseURL, token string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse marketplace url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("marketplace url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

type ordersResponse struct {
	Orders []normalize.RawOrder `json:"orders"`
	Data   []normalize.RawOrder `json:"data"`
}

// FetchOrders retrieves the full order snapshot for the authenticated user.
func (c *HTTPClient) FetchOrders(ctx context.Context, force bool) ([]normalize.RawOrder, error) {
	endpoint := c.endpoint("/api/customer/orders")
	if force {
		query := endpoint.Query()
		query.Set("force", "1")
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		// The snapshot arrives either as a bare array or wrapped under
		// orders/data depending on API vintage.
		if raws, err := normalize.DecodeOrders(body); err == nil {
			return raws, nil
		}
		var wrapped ordersResponse
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
		if wrapped.Orders != nil {
			return wrapped.Orders, nil
		}
		return wrapped.Data, nil
	case http.StatusNoContent:
		return nil, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, c.unexpected(resp)
	}
}

// AcceptQuote submits the acceptance transaction. A 422 response with
// structured field errors surfaces as the first reported FieldError.
func (c *HTTPClient) AcceptQuote(ctx context.Context, orderNumber string, submission AcceptanceSubmission) error {
	endpoint := c.endpoint("/api/customer/orders", orderNumber, "accept")

	payload, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusUnprocessableEntity:
		return c.fieldError(resp)
	default:
		return c.unexpected(resp)
	}
}

// NotifyQuoteViewed emits the quote-viewed side-effect notification to the
// quote's provider.
func (c *HTTPClient) NotifyQuoteViewed(ctx context.Context, notification ViewNotification) error {
	endpoint := c.endpoint("/api/providers", notification.ProviderID, "notifications")

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return c.unexpected(resp)
	}
}

func (c *HTTPClient) endpoint(segments ...string) url.URL {
	endpoint := *c.baseURL
	parts := append([]string{endpoint.Path}, segments...)
	endpoint.Path = path.Join(parts...)
	return endpoint
}

func (c *HTTPClient) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *HTTPClient) fieldError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var payload struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		fields := make([]string, 0, len(payload.Errors))
		for field := range payload.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		first := fields[0]
		if msgs := payload.Errors[first]; len(msgs) > 0 {
			return domainErrors.NewFieldError(first, msgs[0])
		}
	}
	if payload.Message != "" {
		return fmt.Errorf("marketplace rejected submission: %s", payload.Message)
	}
	return fmt.Errorf("marketplace rejected submission: %s", resp.Status)
}

func (c *HTTPClient) unexpected(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	c.logger.Error("marketplace request failed",
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(body)))
	return fmt.Errorf("marketplace error: %s", resp.Status)
}
