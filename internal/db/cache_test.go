package db

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanm101/gameid/internal/metrics"
)

type payload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestCache_HitWithinTTL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	c := NewCache[payload](db, "cache-hit", time.Hour)
	c.now = func() time.Time { return now }
	c.Put(ctx, "key", "7", 500, payload{ID: 7, Name: "Celeste"})

	now = now.Add(59 * time.Minute)
	got, ok := c.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, payload{ID: 7, Name: "Celeste"}, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("cache-hit", "hit")))
}

func TestCache_ExpiredIsMiss(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	c := NewCache[payload](db, "cache-expired", time.Hour)
	c.now = func() time.Time { return now }
	c.Put(ctx, "key", "7", 500, payload{ID: 7})

	now = now.Add(time.Hour)
	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("cache-expired", "miss")))
}

func TestCache_ProvidersAreSeparate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	NewCache[payload](db, "a", time.Hour).Put(ctx, "key", "1", 0, payload{ID: 1})

	_, ok := NewCache[payload](db, "b", time.Hour).Get(ctx, "key")
	assert.False(t, ok)
}

func TestCache_UnreadablePayloadIsMiss(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.PutResolvedGame(ctx, ResolvedGame{
		Provider: "cache-bad", LookupKey: "key", ProviderID: "1", Payload: []byte("not json"), ResolvedAt: time.Now(),
	}))

	_, ok := NewCache[payload](db, "cache-bad", time.Hour).Get(ctx, "key")
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("cache-bad", "error")))
}

func TestCache_NilDatabase(t *testing.T) {
	c := NewCache[payload](nil, "none", time.Hour)
	c.Put(context.Background(), "key", "1", 0, payload{ID: 1})

	_, ok := c.Get(context.Background(), "key")
	assert.False(t, ok)

	var nilCache *Cache[payload]
	_, ok = nilCache.Get(context.Background(), "key")
	assert.False(t, ok)
}
