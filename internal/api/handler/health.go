package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/minimart/storefront-sync/internal/core/service"
)

// HealthHandler serves liveness and readiness probes.
// Liveness returns 200 immediately; readiness checks the bootstrap latch and,
// when configured, Redis connectivity.
type HealthHandler struct {
	store *service.StoreService
	redis *redis.Client // optional
}

func NewHealthHandler(store *service.StoreService, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{store: store, redis: rdb}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	if h.store.Ready() {
		deps["bootstrap"] = dependencyStatus{Status: "ok"}
	} else {
		deps["bootstrap"] = dependencyStatus{Status: "loading"}
		healthy = false
	}

	if h.redis != nil {
		if _, err := h.redis.Ping(ctx).Result(); err != nil {
			deps["redis"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
		} else {
			deps["redis"] = dependencyStatus{Status: "ok"}
		}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
