package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSearcher struct {
	errs  []error // consumed per call; nil entry means success
	res   []string
	calls int
}

func (s *scriptedSearcher) Search(_ context.Context, _ []string) ([]string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return s.res, nil
}

func TestFetchWithRetry_FailsTwiceReturnsEmpty(t *testing.T) {
	s := &scriptedSearcher{errs: []error{assert.AnError, assert.AnError}}

	res, err := FetchWithRetry[string](context.Background(), "test", s, []string{"zelda"}, DefaultAttempts)

	assert.NotNil(t, res)
	assert.Empty(t, res)
	assert.Equal(t, 2, s.calls)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "test", fe.Provider)
	assert.Equal(t, []string{"zelda"}, fe.Terms)
	assert.Equal(t, 2, fe.Attempts)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestFetchWithRetry_RecoversOnSecondAttempt(t *testing.T) {
	s := &scriptedSearcher{errs: []error{assert.AnError}, res: []string{"a", "b"}}

	res, err := FetchWithRetry[string](context.Background(), "test", s, []string{"zelda"}, DefaultAttempts)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res)
	assert.Equal(t, 2, s.calls)
}

func TestFetchWithRetry_NoRetryOnSuccess(t *testing.T) {
	s := &scriptedSearcher{res: []string{"a"}}

	_, err := FetchWithRetry[string](context.Background(), "test", s, nil, DefaultAttempts)

	require.NoError(t, err)
	assert.Equal(t, 1, s.calls)
}

func TestFetchWithRetry_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &scriptedSearcher{errs: []error{context.Canceled, context.Canceled}}

	_, err := FetchWithRetry[string](ctx, "test", s, nil, DefaultAttempts)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, s.calls)
}

func TestSearchFunc(t *testing.T) {
	var got []string
	f := SearchFunc[int](func(_ context.Context, terms []string) ([]int, error) {
		got = terms
		return []int{1}, nil
	})

	res, err := f.Search(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res)
	assert.Equal(t, []string{"x"}, got)
}
