package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/eltatrack/courier-webhooks/internal/api/metrics"
	"github.com/eltatrack/courier-webhooks/internal/core/domain"
	"github.com/eltatrack/courier-webhooks/internal/core/ports"
)

// RecentCache abstracts the optional Redis cache for the recent-activity
// list. A nil cache disables caching entirely.
type RecentCache interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, payload []byte) error
}

type queryService struct {
	store  ports.EventStore
	recent ports.RecentIndex
	cache  RecentCache
	limit  int
	log    zerolog.Logger
}

// NewQueryService returns the QueryService implementation. cache may be nil;
// limit caps the recent list (the dashboard asks for 10).
func NewQueryService(store ports.EventStore, recent ports.RecentIndex, cache RecentCache, limit int, log zerolog.Logger) ports.QueryService {
	return &queryService{store: store, recent: recent, cache: cache, limit: limit, log: log}
}

// History returns the full ordered record for the voucher. Pure read; calling
// it twice with no intervening append yields identical results.
func (s *queryService) History(ctx context.Context, voucher string) (*domain.ShipmentRecord, error) {
	start := time.Now()
	rec, err := s.store.History(ctx, voucher)
	metrics.StoreOperationDuration.WithLabelValues("history").Observe(time.Since(start).Seconds())
	return rec, err
}

// Recent returns the latest-event summaries, newest first, each with the
// voucher injected as a field. Served from the cache when possible; cache
// failures fall back to a store scan and are never fatal.
func (s *queryService) Recent(ctx context.Context) ([]domain.StatusEvent, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("recent cache read failed, scanning store")
		}
		if data != nil {
			var cached []domain.StatusEvent
			if err := json.Unmarshal(data, &cached); err == nil {
				metrics.RecentCacheTotal.WithLabelValues("hit").Inc()
				return cached, nil
			}
			s.log.Warn().Msg("recent cache entry unreadable, scanning store")
		}
		metrics.RecentCacheTotal.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	summaries, err := s.recent.ListRecent(ctx, s.limit)
	metrics.StoreOperationDuration.WithLabelValues("list_recent").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	events := make([]domain.StatusEvent, 0, len(summaries))
	for _, sum := range summaries {
		ev, err := sum.Latest.With("voucher", sum.Voucher)
		if err != nil {
			s.log.Warn().Err(err).Str("voucher", sum.Voucher).Msg("skipping summary")
			continue
		}
		events = append(events, ev)
	}

	if s.cache != nil {
		if data, err := json.Marshal(events); err == nil {
			if err := s.cache.Set(ctx, data); err != nil {
				s.log.Warn().Err(err).Msg("failed to populate recent cache")
			}
		}
	}
	return events, nil
}
