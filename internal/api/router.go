package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eltatrack/courier-webhooks/internal/api/handler"
	"github.com/eltatrack/courier-webhooks/internal/api/middleware"
	"github.com/eltatrack/courier-webhooks/internal/core/service"
	"github.com/eltatrack/courier-webhooks/internal/infrastructure/config"
	redisdb "github.com/eltatrack/courier-webhooks/internal/infrastructure/db/redis"
	"github.com/eltatrack/courier-webhooks/internal/infrastructure/store"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil, in which case the recent-activity cache is disabled.
func NewRouter(cfg *config.Config, st *store.FileStore, rdb *redis.Client, log zerolog.Logger, diag zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	// All origins allowed: the dashboard and emulator pages are served from
	// anywhere during testing. Preflight OPTIONS is answered by this
	// middleware with 204 and no body.
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, middleware.HeaderAPIKey},
	}))
	e.Use(middleware.Diagnostics(diag))

	// HTTP metrics live in a per-router registry so building several routers
	// (tests do) never double-registers; /metrics exposes both that registry
	// and the default one holding the domain metrics.
	reg := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "webhook",
		Registerer: reg,
	}))

	// --- Dependencies ---
	var (
		recentCache service.RecentCache
		invalidator service.CacheInvalidator
	)
	if rdb != nil {
		rc := redisdb.NewRecentCache(rdb)
		recentCache = rc
		invalidator = rc
	}

	ingestService := service.NewIngestService(st, invalidator, log)
	queryService := service.NewQueryService(st, st, recentCache, cfg.RecentLimit, log)
	webhookHandler := handler.NewWebhookHandler(ingestService, queryService)

	// --- Webhook routes ---
	// Writes require the APIKEY header; reads are deliberately open (the
	// dashboard polls them unauthenticated, matching the legacy contract).
	e.POST("/webhook", webhookHandler.Ingest, middleware.APIKey(cfg.APIKey))
	e.GET("/webhook", webhookHandler.Query)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(st, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – is the data dir writable?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))

	return e
}
