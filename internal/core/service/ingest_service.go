package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/eltatrack/courier-webhooks/internal/api/metrics"
	"github.com/eltatrack/courier-webhooks/internal/core/domain"
	"github.com/eltatrack/courier-webhooks/internal/core/ports"
)

// CacheInvalidator drops derived read-side state after a successful append.
// Implemented by the Redis recent-activity cache; nil when Redis is not
// configured.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type ingestService struct {
	store ports.EventStore
	cache CacheInvalidator
	log   zerolog.Logger
}

// NewIngestService returns the IngestService implementation. cache may be nil.
func NewIngestService(store ports.EventStore, cache CacheInvalidator, log zerolog.Logger) ports.IngestService {
	return &ingestService{store: store, cache: cache, log: log}
}

// Ingest decodes one status update and appends it to the voucher's history.
// Authentication has already happened at the transport boundary; this is the
// only path that mutates the store.
func (s *ingestService) Ingest(ctx context.Context, payload []byte) (*ports.IngestResult, error) {
	var event domain.StatusEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		metrics.WebhookErrorsTotal.WithLabelValues("invalid_payload").Inc()
		if errors.Is(err, domain.ErrInvalidPayload) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	voucher := event.Voucher()

	start := time.Now()
	filename, err := s.store.Append(ctx, voucher, event)
	metrics.StoreOperationDuration.WithLabelValues("append").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WebhookErrorsTotal.WithLabelValues(appendFailureReason(err)).Inc()
		return nil, fmt.Errorf("ingest %s: %w", voucher, err)
	}

	metrics.WebhooksReceivedTotal.WithLabelValues(statusCodeLabel(event)).Inc()

	// Cache invalidation is best-effort: the list has a short TTL anyway.
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate recent cache")
		}
	}

	s.log.Info().
		Str("voucher", voucher).
		Str("status_code", event.StatusCode()).
		Str("status_title", event.StatusTitleEN()).
		Str("filename", filename).
		Msg("status update stored")

	return &ports.IngestResult{Voucher: voucher, Filename: filename}, nil
}

func appendFailureReason(err error) string {
	if errors.Is(err, domain.ErrCorruptRecord) {
		return "corrupt_record"
	}
	return "store_unavailable"
}

func statusCodeLabel(event domain.StatusEvent) string {
	if code := event.StatusCode(); code != "" {
		return code
	}
	return "none"
}
