package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/rmawad/partsync/internal/server/http/handlers"
	"github.com/rmawad/partsync/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.SyncFacade, quoteValidity time.Duration, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade, quoteValidity)
	acceptanceHandler := handlers.NewAcceptanceHandler(facade, facade)
	syncHandler := handlers.NewSyncHandler(facade)

	engine.GET("/healthz", syncHandler.Health)

	api := engine.Group("/api")
	api.POST("/refresh", syncHandler.Refresh)

	orders := api.Group("/orders")
	orders.GET("", orderHandler.List)
	orders.GET("/:number", orderHandler.Get)
	orders.POST("/:number/open", orderHandler.Open)
	orders.POST("/:number/accept", acceptanceHandler.Accept)
	orders.POST("/:number/receipt", acceptanceHandler.Receipt)
	orders.GET("/:number/shipping-cost", acceptanceHandler.ShippingCost)

	return engine
}
