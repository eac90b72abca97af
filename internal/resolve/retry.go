package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultAttempts is the number of tries given to each query variant.
const DefaultAttempts = 2

// Searcher runs one query variant against an external catalogue.
type Searcher[T any] interface {
	Search(ctx context.Context, terms []string) ([]T, error)
}

// SearchFunc adapts a function to Searcher.
type SearchFunc[T any] func(ctx context.Context, terms []string) ([]T, error)

// Search calls f.
func (f SearchFunc[T]) Search(ctx context.Context, terms []string) ([]T, error) {
	return f(ctx, terms)
}

// FetchError reports a variant that still failed after all attempts.
type FetchError struct {
	Provider string
	Terms    []string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s search %q failed after %d attempts: %v",
		e.Provider, strings.Join(e.Terms, " "), e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchWithRetry runs one variant, retrying a failed call until attempts
// are used up. Providers invalidate their session token on failure, so a
// retry re-authenticates. Once exhausted it returns an empty, non-nil
// result together with a *FetchError; callers treat that as "no results
// for this variant".
func FetchWithRetry[T any](ctx context.Context, provider string, s Searcher[T], terms []string, attempts int) ([]T, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	tried := 0
	for tried < attempts {
		tried++
		res, err := s.Search(ctx, terms)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return []T{}, &FetchError{
		Provider: provider,
		Terms:    terms,
		Attempts: tried,
		Err:      errors.WithStack(lastErr),
	}
}
