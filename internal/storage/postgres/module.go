package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/config"
)

// Module wires the optional snapshot cache. Without DATABASE_URI the cache is
// nil and the refresher simply skips persistence.
var Module = fx.Options(
	fx.Provide(newCache),
	fx.Invoke(registerLifecycle),
)

type cacheParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newCache(p cacheParams) (*Cache, error) {
	if p.Config.DatabaseURI == "" {
		p.Logger.Info("snapshot cache disabled")
		return nil, nil
	}
	return New(p.Ctx, p.Config.DatabaseURI, p.Config.UserID, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, cache *Cache) {
	if cache == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			cache.Close()
			return nil
		},
	})
}
