package di

import (
	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/acceptance"
	"github.com/rmawad/partsync/internal/adapter/marketplace"
	"github.com/rmawad/partsync/internal/app"
	"github.com/rmawad/partsync/internal/config"
	"github.com/rmawad/partsync/internal/logger"
	"github.com/rmawad/partsync/internal/realtime"
	"github.com/rmawad/partsync/internal/reconciler"
	"github.com/rmawad/partsync/internal/refresher"
	"github.com/rmawad/partsync/internal/server/http/handlers"
	"github.com/rmawad/partsync/internal/server/http/router"
	"github.com/rmawad/partsync/internal/storage/postgres"
	"github.com/rmawad/partsync/internal/store"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		store.Module,
		postgres.Module,
		marketplace.Module,
		refresher.Module,
		realtime.Module,
		reconciler.Module,
		acceptance.Module,
		fx.Provide(func(f *app.SyncFacade) handlers.SyncFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
