// Command webhookd runs the courier status webhook receiver: authenticated
// ingestion on POST /webhook, dashboard queries on GET /webhook, health
// probes, and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/eltatrack/courier-webhooks/internal/api"
	"github.com/eltatrack/courier-webhooks/internal/infrastructure/config"
	redisdb "github.com/eltatrack/courier-webhooks/internal/infrastructure/db/redis"
	"github.com/eltatrack/courier-webhooks/internal/infrastructure/store"
	"github.com/eltatrack/courier-webhooks/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	diag := logger.NewDiagnostic(logger.DiagnosticOptions{
		Path:       cfg.DiagLog.Path,
		MaxSizeMB:  cfg.DiagLog.MaxSizeMB,
		MaxBackups: cfg.DiagLog.MaxBackups,
	})

	st, err := store.NewFileStore(afero.NewOsFs(), cfg.DataDir, log)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to open event store")
	}

	// Redis is an optional cache: a missing or unreachable instance degrades
	// to direct directory scans instead of failing startup.
	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, recent-activity cache disabled")
		rdb = nil
	}

	e := api.NewRouter(cfg, st, rdb, log, diag)

	go func() {
		log.Info().Str("port", cfg.Port).Str("data_dir", cfg.DataDir).Msg("webhook receiver listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
