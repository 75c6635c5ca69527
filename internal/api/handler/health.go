package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler handles GET /health — liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// StorePinger verifies the event store's backing directory is usable.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// ReadinessHandler handles GET /health/ready — readiness probe.
// Checks the data directory is writable and, when configured, that Redis
// answers a ping.
type ReadinessHandler struct {
	store StorePinger
	redis *redis.Client // nil when the cache is disabled
}

func NewReadinessHandler(store StorePinger, rdb *redis.Client) *ReadinessHandler {
	return &ReadinessHandler{store: store, redis: rdb}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := map[string]dependencyStatus{}
	ready := true

	storeStatus := dependencyStatus{Status: "ok"}
	if err := h.store.Ping(ctx); err != nil {
		storeStatus = dependencyStatus{Status: "unavailable", Error: err.Error()}
		ready = false
	}
	deps["store"] = storeStatus

	if h.redis != nil {
		redisStatus := dependencyStatus{Status: "ok"}
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// The cache is optional: degraded, but still ready.
			redisStatus = dependencyStatus{Status: "unavailable", Error: err.Error()}
		}
		deps["redis"] = redisStatus
	}

	code := http.StatusOK
	status := "ready"
	if !ready {
		code = http.StatusServiceUnavailable
		status = "not ready"
	}
	return c.JSON(code, map[string]any{
		"status":       status,
		"dependencies": deps,
	})
}
