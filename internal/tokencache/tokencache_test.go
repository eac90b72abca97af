package tokencache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

type countingFetcher struct {
	calls int
	err   error
	token string
	ttl   time.Duration
}

func (f *countingFetcher) Fetch(context.Context) (string, time.Duration, error) {
	f.calls++
	if f.err != nil {
		return "", 0, f.err
	}
	if f.token == "" {
		return fmt.Sprintf("tok-%d", f.calls), f.ttl, nil
	}
	return f.token, f.ttl, nil
}

func newCache(f *countingFetcher, clock *fakeClock) *Cache {
	return New("test", 30*time.Minute, f.Fetch, WithClock(clock.Now))
}

func TestToken_ReusedWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	f := &countingFetcher{}
	c := newCache(f, clock)
	ctx := context.Background()

	first, err := c.Token(ctx)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	second, err := c.Token(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.calls)
}

func TestToken_RefreshedAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	f := &countingFetcher{}
	c := newCache(f, clock)
	ctx := context.Background()

	first, err := c.Token(ctx)
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	second, err := c.Token(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, f.calls)
	assert.Equal(t, clock.Now(), c.IssuedAt())
}

func TestToken_ExpiresExactlyAtTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	f := &countingFetcher{}
	c := newCache(f, clock)

	_, _ = c.Token(context.Background())
	clock.Advance(30 * time.Minute)
	_, _ = c.Token(context.Background())

	assert.Equal(t, 2, f.calls)
}

func TestToken_FetcherTTLOverridesDefault(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	f := &countingFetcher{ttl: time.Minute}
	c := newCache(f, clock)

	_, _ = c.Token(context.Background())
	clock.Advance(2 * time.Minute)
	_, _ = c.Token(context.Background())

	assert.Equal(t, 2, f.calls)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	f := &countingFetcher{}
	c := newCache(f, clock)

	_, _ = c.Token(context.Background())
	c.Invalidate()
	assert.True(t, c.IssuedAt().IsZero())

	_, _ = c.Token(context.Background())
	assert.Equal(t, 2, f.calls)
}

func TestToken_FetchErrorLeavesSlotEmpty(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	f := &countingFetcher{err: assert.AnError}
	c := newCache(f, clock)

	_, err := c.Token(context.Background())
	assert.ErrorIs(t, err, assert.AnError)

	f.err = nil
	tok, err := c.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
}

func TestToken_EmptyTokenIsError(t *testing.T) {
	c := New("test", time.Minute, func(context.Context) (string, time.Duration, error) {
		return "", 0, nil
	})

	_, err := c.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
	assert.True(t, c.IssuedAt().IsZero())
}
