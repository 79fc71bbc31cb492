package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/minimart/storefront-sync/internal/api/handler"
	"github.com/minimart/storefront-sync/internal/api/middleware"
	"github.com/minimart/storefront-sync/internal/core/service"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil when the placement guard is disabled.
func NewRouter(store *service.StoreService, boot *service.Bootstrapper, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("storefront"))

	// --- Probes & metrics (no admin gate) ---
	health := handler.NewHealthHandler(store, rdb)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Storefront surface ---
	session := handler.NewSessionHandler(store, boot)
	catalog := handler.NewCatalogHandler(store)
	cart := handler.NewCartHandler(store)
	orders := handler.NewOrderHandler(store)
	admin := middleware.Admin(store)

	v1 := e.Group("/v1")
	v1.GET("/session", session.Get)

	v1.GET("/catalog", catalog.List)
	v1.POST("/catalog", catalog.Create, admin)
	v1.DELETE("/catalog/:id", catalog.Remove, admin)

	v1.GET("/cart", cart.Get)
	v1.POST("/cart/items", cart.AddItem)
	v1.DELETE("/cart/items/:id", cart.RemoveItem)
	v1.DELETE("/cart", cart.Clear)

	v1.GET("/orders", orders.List)
	v1.POST("/orders", orders.Place)
	v1.POST("/orders/refresh", orders.Refresh)
	v1.POST("/orders/:id/process", orders.Process, admin)

	return e
}
