package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"go.uber.org/fx"

	"github.com/rmawad/partsync/internal/config"
	"github.com/rmawad/partsync/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(newRouter)

type routerParams struct {
	fx.In

	Facade handlers.SyncFacade
	Config *config.Config
	Logger *slog.Logger
}

func newRouter(p routerParams) *gin.Engine {
	return Setup(p.Facade, p.Config.QuoteValidity, p.Logger)
}
