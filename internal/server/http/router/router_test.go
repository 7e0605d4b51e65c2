package router

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rmawad/partsync/internal/app"
	"github.com/rmawad/partsync/internal/server/http/dto"
	"github.com/rmawad/partsync/internal/server/http/handlers"
	testhelpers "github.com/rmawad/partsync/internal/test"
)

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := testhelpers.SyncFacadeStub{}
	engine := Setup(facade, 72*time.Hour, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for orders, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for single order, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/orders/ORD-1/open", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 for open, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 for refresh, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for healthz, got %d", resp.Code)
	}
}

func TestOrdersResponseIsGzippedWhenAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := Setup(testhelpers.SyncFacadeStub{}, 72*time.Hour, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoded response")
	}
}

func TestShippingCostRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := Setup(testhelpers.SyncFacadeStub{}, 72*time.Hour, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1/shipping-cost?quote=q1&city=Riyadh", nil)
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body dto.ShippingCostResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ShippingPrice != "35" {
		t.Fatalf("shipping price = %q", body.ShippingPrice)
	}
}

var (
	_ handlers.SyncFacade = testhelpers.SyncFacadeStub{}
	_ handlers.SyncFacade = (*app.SyncFacade)(nil)
)
