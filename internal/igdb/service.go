package igdb

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/ryanm101/gameid/internal/db"
	"github.com/ryanm101/gameid/internal/match"
	"github.com/ryanm101/gameid/internal/resolve"
)

const (
	autocompleteMin   = 2
	autocompleteLimit = 10
)

// ErrEmptyQuery is returned by Autocomplete for a blank query.
var ErrEmptyQuery = errors.New("missing query")

// Suggestion is one type-ahead entry.
type Suggestion struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Year      *int    `json:"year"`
	Relevance float64 `json:"relevance"`
	Cover     *string `json:"cover"`
}

// Service matches identities against IGDB. Matching is loose: the best
// candidate is always returned and shared platforms raise the score.
type Service struct {
	client   *Client
	resolver *resolve.Resolver[Game]
	cache    *db.Cache[Game]
}

// NewService creates a service. Both vocab and cache may be nil.
func NewService(client *Client, vocab *match.Vocabulary, cache *db.Cache[Game]) *Service {
	return &Service{
		client: client,
		resolver: &resolve.Resolver[Game]{
			Provider:  Provider,
			Searcher:  client,
			Engine:    match.NewEngine(vocab, match.Loose()),
			ID:        Game.Key,
			Candidate: Game.Candidate,
		},
		cache: cache,
	}
}

// Queries returns the search variants used for id. IGDB takes every
// spelling in one filtered request, so there is a single variant holding
// the name and its distinct alternates; NameFilter expands each of them.
func Queries(id match.Identity) [][]string {
	seen := make(map[string]struct{})
	var names []string
	for _, n := range id.Names() {
		n = strings.TrimSpace(n)
		k := strings.ToLower(n)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil
	}
	return [][]string{names}
}

// Match resolves id to the closest IGDB game.
func (s *Service) Match(ctx context.Context, id match.Identity) (*Game, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	key := s.resolver.Engine.Vocabulary().CacheKey(id.Key())
	if g, ok := s.cache.Get(ctx, key); ok {
		return &g, nil
	}

	m, err := s.resolver.Resolve(ctx, id, Queries(id))
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, key, m.Record.Key(), m.Scored.Score, m.Record)
	return &m.Record, nil
}

// Autocomplete returns up to ten suggestions for a partial title, most
// relevant first. Queries shorter than two characters return nothing.
func (s *Service) Autocomplete(ctx context.Context, query string) ([]Suggestion, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if utf8.RuneCountInString(q) < autocompleteMin {
		return []Suggestion{}, nil
	}

	games, err := s.client.search(ctx, NameFilter(q), DefaultLimit)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(games))
	for i, g := range games {
		sg := Suggestion{
			ID:        g.ID,
			Name:      g.Name,
			Slug:      g.Slug,
			Relevance: AutocompleteRelevance(q, g.Name, i, g.RatingCount),
		}
		if g.Year != 0 {
			year := g.Year
			sg.Year = &year
		}
		if g.Cover != "" {
			cover := smallCover(g.Cover)
			sg.Cover = &cover
		}
		out = append(out, sg)
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		return cmp.Compare(b.Relevance, a.Relevance)
	})
	if len(out) > autocompleteLimit {
		out = out[:autocompleteLimit]
	}
	return out, nil
}

func smallCover(bigURL string) string {
	return strings.Replace(bigURL, "/t_cover_big/", "/t_cover_small/", 1)
}

// CoverURL builds an image URL for an IGDB image ID at the given size.
func CoverURL(imageID, size string) string {
	return fmt.Sprintf(imageURL, size, imageID)
}

