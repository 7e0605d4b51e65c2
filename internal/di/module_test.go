package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/app"
	"github.com/rmawad/partsync/internal/config"
)

func TestModuleComposesGraph(t *testing.T) {
	cfg := &config.Config{
		RunAddress:          ":0",
		APIBaseURL:          "http://localhost:9000",
		APIToken:            "token",
		UserID:              "42",
		RealtimeURL:         "ws://localhost:9001/ws",
		QuoteValidity:       time.Hour,
		RefreshDebounce:     time.Millisecond,
		ReconnectMaxBackoff: time.Second,
		ShutdownTimeout:     time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var facade *app.SyncFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(fx.Annotate(context.Background(), fx.As(new(context.Context)))),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected sync facade instance")
	}
}
