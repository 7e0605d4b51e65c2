package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/rmawad/partsync/internal/domain/errors"
	"github.com/rmawad/partsync/internal/normalize"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewHTTPClient(server.URL, "secret-token", discardLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestNewHTTPClientRejectsRelativeURL(t *testing.T) {
	if _, err := NewHTTPClient("/not/absolute", "", discardLogger()); err == nil {
		t.Fatalf("expected error for relative url")
	}
}

func TestFetchOrdersBareArray(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/customer/orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			t.Errorf("missing bearer token")
		}
		if r.URL.Query().Get("force") != "1" {
			t.Errorf("expected force flag")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"orderNumber": "A-1", "status": "pending"}]`))
	})

	raws, err := client.FetchOrders(context.Background(), true)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(raws) != 1 || raws[0].OrderNumber == nil || *raws[0].OrderNumber != "A-1" {
		t.Fatalf("unexpected snapshot: %+v", raws)
	}
}

func TestFetchOrdersWrappedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("force") != "" {
			t.Errorf("unexpected force flag on background refresh")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders": [{"order_number": "A-2"}]}`))
	})

	raws, err := client.FetchOrders(context.Background(), false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(raws) != 1 || raws[0].OrderNumberAlt == nil || *raws[0].OrderNumberAlt != "A-2" {
		t.Fatalf("unexpected snapshot: %+v", raws)
	}
}

func TestFetchOrdersNoContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	raws, err := client.FetchOrders(context.Background(), false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(raws) != 0 {
		t.Fatalf("expected empty snapshot")
	}
}

func TestFetchOrdersUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if _, err := client.FetchOrders(context.Background(), false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFetchOrdersServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := client.FetchOrders(context.Background(), false); err == nil {
		t.Fatalf("expected error for 502")
	}
}

func TestAcceptQuoteSubmitsAtomicPayload(t *testing.T) {
	var received AcceptanceSubmission
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/customer/orders/A-1/accept" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode submission: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	submission := AcceptanceSubmission{
		QuoteID:           "q-1",
		PaymentMethodID:   "pm-1",
		PaymentMethodName: "Bank transfer",
		DeliveryMethod:    "shipping",
		CustomerName:      "Sara",
		CustomerAddress:   "12 King Fahd Rd",
		CustomerPhone:     "0500000000",
		ShippingPrice:     decimal.NewFromInt(40),
		PaymentReceipt:    &Attachment{FileName: "receipt.jpg", ContentType: "image/jpeg", Data: []byte("fake")},
	}
	if err := client.AcceptQuote(context.Background(), "A-1", submission); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if received.QuoteID != "q-1" || received.PaymentReceipt == nil {
		t.Fatalf("submission not transmitted intact: %+v", received)
	}
	if !received.ShippingPrice.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("shipping price mangled: %s", received.ShippingPrice)
	}
	if string(received.PaymentReceipt.Data) != "fake" {
		t.Fatalf("receipt data mangled")
	}
}

func TestAcceptQuoteSurfacesFirstFieldError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "invalid", "errors": {"payment_receipt": ["receipt unreadable"], "customer_phone": ["phone invalid"]}}`))
	})

	err := client.AcceptQuote(context.Background(), "A-1", AcceptanceSubmission{})
	fieldErr, ok := domainErrors.AsFieldError(err)
	if !ok {
		t.Fatalf("expected FieldError, got %v", err)
	}
	// First field in deterministic (sorted) order.
	if fieldErr.Field != "customer_phone" || fieldErr.Message != "phone invalid" {
		t.Fatalf("unexpected field error: %+v", fieldErr)
	}
}

func TestAcceptQuote422WithoutStructuredErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "quote no longer available"}`))
	})
	err := client.AcceptQuote(context.Background(), "A-1", AcceptanceSubmission{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := domainErrors.AsFieldError(err); ok {
		t.Fatalf("message-only rejection should not be a field error")
	}
}

func TestNotifyQuoteViewed(t *testing.T) {
	var received ViewNotification
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/providers/p-1/notifications" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode notification: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	notification := ViewNotification{
		ID:          "n-1",
		Type:        "QUOTE_VIEWED",
		OrderNumber: "A-1",
		QuoteID:     "q-1",
		ProviderID:  "p-1",
		ViewedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := client.NotifyQuoteViewed(context.Background(), notification); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if received.QuoteID != "q-1" || received.Type != "QUOTE_VIEWED" {
		t.Fatalf("notification not transmitted intact: %+v", received)
	}
}

func TestClientSatisfiesRefresherContract(t *testing.T) {
	var _ interface {
		FetchOrders(ctx context.Context, force bool) ([]normalize.RawOrder, error)
	} = (*HTTPClient)(nil)
}
