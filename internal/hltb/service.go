package hltb

import (
	"context"

	"github.com/ryanm101/gameid/internal/db"
	"github.com/ryanm101/gameid/internal/match"
	"github.com/ryanm101/gameid/internal/resolve"
)

// Service resolves identities to completion times. Matching is strict: a
// candidate whose name similarity is under the minimum is never returned.
type Service struct {
	client   *Client
	vocab    *match.Vocabulary
	resolver *resolve.Resolver[Game]
	cache    *db.Cache[Result]
}

// NewService creates a service. Both vocab and cache may be nil.
func NewService(client *Client, vocab *match.Vocabulary, cache *db.Cache[Result]) *Service {
	engine := match.NewEngine(vocab, match.Strict())
	return &Service{
		client: client,
		vocab:  engine.Vocabulary(),
		resolver: &resolve.Resolver[Game]{
			Provider:  Provider,
			Searcher:  client,
			Engine:    engine,
			ID:        Game.Key,
			Candidate: Game.Candidate,
		},
		cache: cache,
	}
}

// Queries returns the search variants used for id.
func (s *Service) Queries(id match.Identity) [][]string {
	return s.vocab.BuildQueries(id.Name, id.AlternateNames)
}

// Find resolves id, serving from the cache when possible. It returns
// match.ErrEmptyName for a blank name and resolve.ErrNotFound when nothing
// matches well enough. Misses are not cached. Platforms are not part of
// the cache key since the strict engine ignores them.
func (s *Service) Find(ctx context.Context, id match.Identity) (*Result, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	key := s.vocab.CacheKey(id.NameKey())
	if r, ok := s.cache.Get(ctx, key); ok {
		return &r, nil
	}

	m, err := s.resolver.Resolve(ctx, id, s.Queries(id))
	if err != nil {
		return nil, err
	}

	r := NewResult(m.Record, s.client.baseURL)
	s.cache.Put(ctx, key, m.Record.Key(), m.Scored.Score, r)
	return &r, nil
}
