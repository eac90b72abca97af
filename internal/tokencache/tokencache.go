// Package tokencache holds a single short-lived bearer token for an
// upstream API, refreshing it on expiry or after explicit invalidation.
package tokencache

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/metrics"
)

// ErrNoToken is returned when the fetcher succeeds without a token.
var ErrNoToken = errors.New("auth response carried no token")

// Fetcher obtains a fresh token. A positive ttl overrides the cache default.
type Fetcher func(ctx context.Context) (token string, ttl time.Duration, err error)

// Cache is one token slot. It is safe for concurrent use; two callers that
// both observe an expired token may both refresh it, and the later write wins.
type Cache struct {
	provider string
	fetch    Fetcher
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	token     string
	issuedAt  time.Time
	expiresAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache for the named provider.
func New(provider string, ttl time.Duration, fetch Fetcher, opts ...Option) *Cache {
	c := &Cache{
		provider: provider,
		fetch:    fetch,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the cached token, fetching a new one when the slot is
// empty or expired. A failed fetch leaves the slot empty.
func (c *Cache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.expiresAt) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	tok, ttl, err := c.fetch(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "%s token", c.provider)
	}
	if tok == "" {
		return "", errors.Wrapf(ErrNoToken, "%s token", c.provider)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	now := c.now()
	c.mu.Lock()
	c.token = tok
	c.issuedAt = now
	c.expiresAt = now.Add(ttl)
	c.mu.Unlock()

	metrics.TokenRefreshes.WithLabelValues(c.provider).Inc()
	logging.For("tokencache").Debug("token refreshed", "provider", c.provider, "ttl", ttl)
	return tok, nil
}

// Invalidate empties the slot so the next Token call re-authenticates.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// IssuedAt returns when the current token was fetched, or the zero time.
func (c *Cache) IssuedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return time.Time{}
	}
	return c.issuedAt
}
