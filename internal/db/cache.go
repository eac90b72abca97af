package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/metrics"
)

// Cache is a typed view over resolved_games for one provider. Storage
// errors are logged and reported as misses; they never fail a lookup.
type Cache[T any] struct {
	db       *DB
	provider string
	ttl      time.Duration
	now      func() time.Time
}

// NewCache returns a cache for provider. A nil db yields a cache that
// never hits and never stores.
func NewCache[T any](db *DB, provider string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{db: db, provider: provider, ttl: ttl, now: time.Now}
}

// Get returns the cached value for key if it is younger than the TTL.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	if c == nil || c.db == nil {
		return zero, false
	}

	g, err := c.db.GetResolvedGame(ctx, c.provider, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(c.provider, "error").Inc()
		logging.Warn("cache lookup failed", "provider", c.provider, "error", err)
		return zero, false
	}
	if g == nil || c.now().Sub(g.ResolvedAt) >= c.ttl {
		metrics.CacheLookups.WithLabelValues(c.provider, "miss").Inc()
		return zero, false
	}

	var v T
	if err := json.Unmarshal(g.Payload, &v); err != nil {
		metrics.CacheLookups.WithLabelValues(c.provider, "error").Inc()
		logging.Warn("cache entry unreadable", "provider", c.provider, "key", key, "error", err)
		return zero, false
	}
	metrics.CacheLookups.WithLabelValues(c.provider, "hit").Inc()
	return v, true
}

// Put stores v under key.
func (c *Cache[T]) Put(ctx context.Context, key, providerID string, score float64, v T) {
	if c == nil || c.db == nil {
		return
	}

	payload, err := json.Marshal(v)
	if err != nil {
		logging.Warn("cache encode failed", "provider", c.provider, "error", err)
		return
	}
	err = c.db.PutResolvedGame(ctx, ResolvedGame{
		Provider:   c.provider,
		LookupKey:  key,
		ProviderID: providerID,
		Payload:    payload,
		Score:      score,
		ResolvedAt: c.now(),
	})
	if err != nil {
		logging.Warn("cache store failed", "provider", c.provider, "error", err)
	}
}
