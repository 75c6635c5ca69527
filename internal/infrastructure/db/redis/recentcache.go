package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The dashboard polls the recent list every few seconds; a short TTL keeps a
// burst of pollers from re-scanning the data directory on every request while
// staying close to live.
const (
	recentKey      = "webhook:recent"
	recentTTL      = 3 * time.Second
	connectTimeout = 5 * time.Second
)

// Connect dials the Redis instance backing the recent-activity cache. The
// cache is optional: an empty address means the deployment runs without it,
// reported as a nil client with no error so callers skip cache wiring and
// serve the recent list from directory scans alone.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("recent cache ping %s: %w", addr, err)
	}
	return client, nil
}

// RecentCache caches the serialized recent-activity list in Redis. All
// methods are best-effort from the caller's point of view: a miss and an
// error look the same to the read path, which falls back to the store scan.
type RecentCache struct {
	client *redis.Client
}

// NewRecentCache wraps the given Redis client.
func NewRecentCache(client *redis.Client) *RecentCache {
	return &RecentCache{client: client}
}

// Get returns the cached list, or nil on a miss.
func (c *RecentCache) Get(ctx context.Context) ([]byte, error) {
	data, err := c.client.Get(ctx, recentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recent cache get: %w", err)
	}
	return data, nil
}

// Set stores the serialized list for recentTTL.
func (c *RecentCache) Set(ctx context.Context, payload []byte) error {
	return c.client.Set(ctx, recentKey, payload, recentTTL).Err()
}

// Invalidate drops the cached list. Called after every successful append so
// the dashboard never sees a stale latest status for longer than one poll.
func (c *RecentCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, recentKey).Err()
}
