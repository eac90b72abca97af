// Package resolve drives a multi-variant search against one external
// catalogue and picks the best match for a local game identity.
package resolve

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/match"
	"github.com/ryanm101/gameid/internal/metrics"
	"github.com/ryanm101/gameid/internal/tracing"
)

// ErrNotFound is returned when no candidate survives ranking.
var ErrNotFound = errors.New("not found")

// Match is the winning record with its ranking details.
type Match[T any] struct {
	Record     T
	Scored     match.Scored
	Candidates int // unique candidates considered
}

// Resolver fans query variants out to a Searcher, merges the results by
// identifier and ranks them with Engine.
type Resolver[T any] struct {
	Provider string
	Searcher Searcher[T]
	Engine   *match.Engine

	// ID returns the provider identifier used for deduplication.
	ID func(T) string
	// Candidate reduces a record to the fields the ranker reads.
	Candidate func(T) match.Candidate

	// Attempts per variant; zero means DefaultAttempts.
	Attempts int
}

// Collect runs every variant in order and returns the unique records,
// first occurrence wins. Variant failures are logged and skipped.
func (r *Resolver[T]) Collect(ctx context.Context, variants [][]string) ([]T, error) {
	attempts := r.Attempts
	if attempts == 0 {
		attempts = DefaultAttempts
	}

	seen := make(map[string]struct{})
	var out []T
	for _, terms := range variants {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "resolution cancelled")
		}

		recs, err := FetchWithRetry(ctx, r.Provider, r.Searcher, terms, attempts)
		if err != nil {
			metrics.VariantFailures.WithLabelValues(r.Provider).Inc()
			logging.FromContext(ctx, "resolve").Warn("variant search failed",
				"provider", r.Provider, logging.Terms(terms), "error", err)
			continue
		}

		for _, rec := range recs {
			id := r.ID(rec)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, rec)
		}
	}
	return out, nil
}

// Resolve collects candidates for variants and returns the best match for
// id, or ErrNotFound.
func (r *Resolver[T]) Resolve(ctx context.Context, id match.Identity, variants [][]string) (m Match[T], err error) {
	start := time.Now()
	ctx, span := tracing.StartResolve(ctx, r.Provider, id.Name, len(variants))
	defer span.End()

	defer func() {
		outcome := metrics.OutcomeFound
		switch {
		case errors.Is(err, ErrNotFound):
			outcome = metrics.OutcomeNotFound
		case err != nil:
			outcome = metrics.OutcomeError
			tracing.Fail(span, err)
		}
		metrics.RecordResolution(r.Provider, outcome, start)
	}()

	if err := id.Validate(); err != nil {
		return m, err
	}

	recs, err := r.Collect(ctx, variants)
	if err != nil {
		return m, err
	}
	tracing.Candidates(span, len(recs))

	cands := make([]match.Candidate, len(recs))
	for i, rec := range recs {
		cands[i] = r.Candidate(rec)
	}

	best, ok := r.Engine.Best(cands, id)
	if !ok {
		return m, ErrNotFound
	}
	tracing.Matched(span, best.Score)
	logging.FromContext(ctx, "resolve").Debug("resolved",
		"provider", r.Provider, "name", id.Name, "match", best.String())

	return Match[T]{
		Record:     recs[best.Index],
		Scored:     best,
		Candidates: len(recs),
	}, nil
}
