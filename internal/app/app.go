// Package app assembles the sync engine and owns its lifecycle.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/config"
	domainErrors "github.com/rmawad/partsync/internal/domain/errors"
	"github.com/rmawad/partsync/internal/realtime"
	"github.com/rmawad/partsync/internal/refresher"
	"github.com/rmawad/partsync/internal/storage/postgres"
	"github.com/rmawad/partsync/internal/store"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewSyncFacade,
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Ctx        context.Context
	Logger     *slog.Logger
	Server     *http.Server
	Config     *config.Config
	Store      *store.OrderStore
	Refresher  *refresher.Refresher
	Realtime   *realtime.Manager
	Cache      *postgres.Cache `optional:"true"`
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting partsync", slog.String("addr", p.Server.Addr))

			seedFromCache(ctx, p)

			p.Refresher.Start(p.Ctx)
			if err := p.Realtime.Subscribe(p.Ctx, p.Config.UserID); err != nil {
				return err
			}

			go func() {
				if err := p.Refresher.Refresh(p.Ctx, true); err != nil {
					p.Logger.Error("initial refresh failed", slog.String("error", err.Error()))
				}
			}()

			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Realtime.Release()
			p.Refresher.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("partsync stopped")
			return nil
		},
	})
}

// seedFromCache serves the last committed snapshot until the first fetch
// lands. The refresher's first commit replaces it wholesale.
func seedFromCache(ctx context.Context, p lifecycleParams) {
	if p.Cache == nil {
		return
	}
	orders, err := p.Cache.Load(ctx)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrSnapshotNotFound) {
			p.Logger.Warn("snapshot load failed", slog.String("error", err.Error()))
		}
		return
	}
	p.Store.ReplaceAll(orders)
	p.Logger.Info("warm start from snapshot", slog.Int("orders", len(orders)))
}
