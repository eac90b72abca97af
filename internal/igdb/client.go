// Package igdb resolves games against the IGDB game database.
package igdb

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	igdbapi "github.com/Henry-Sarabia/igdb/v2"
	"github.com/cockroachdb/errors"

	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/match"
	"github.com/ryanm101/gameid/internal/tokencache"
)

// Provider is the name used in metrics, logs and the result cache.
const Provider = "igdb"

const (
	DefaultLimit             = 15
	DefaultRequestsPerSecond = 4
	imageURL                 = "https://images.igdb.com/igdb/image/upload/%s/%s.jpg"

	// maxPage is the largest page IGDB serves; unpaged requests get 10 rows.
	maxPage = 500
)

// ErrNotConfigured is returned when credentials are missing.
var ErrNotConfigured = errors.New("IGDB client ID and secret are required")

var searchFields = []string{
	"name", "slug", "first_release_date", "total_rating",
	"total_rating_count", "platforms", "cover",
}

// Game is an IGDB record with platform and cover references expanded.
type Game struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Year        int      `json:"year,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	RatingCount int      `json:"ratingCount"`
	Platforms   []string `json:"platforms,omitempty"`
	Cover       string   `json:"cover,omitempty"`
}

// Key returns the identifier used to merge results across variants.
func (g Game) Key() string {
	return strconv.Itoa(g.ID)
}

// Candidate reduces g to the fields the ranker reads.
func (g Game) Candidate() match.Candidate {
	return match.Candidate{
		ID:         g.Key(),
		Title:      g.Name,
		Year:       g.Year,
		Platforms:  strings.Join(g.Platforms, ", "),
		Popularity: g.RatingCount,
	}
}

type options struct {
	transport http.RoundTripper
	tokenURL  string
	rps       float64
	limit     int
	now       func() time.Time
}

// Option configures a Client.
type Option func(*options)

// WithTransport sets the round tripper beneath authentication and pacing.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithTokenURL overrides the Twitch token endpoint.
func WithTokenURL(u string) Option {
	return func(o *options) { o.tokenURL = u }
}

// WithRateLimit caps requests per second; zero or less disables pacing.
func WithRateLimit(rps float64) Option {
	return func(o *options) { o.rps = rps }
}

// WithLimit sets the number of results requested per search.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithClock replaces time.Now for token expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Client searches IGDB. Tokens are fetched lazily and refreshed on expiry
// or after a 401.
type Client struct {
	api    *igdbapi.Client
	tokens *tokencache.Cache
	limit  int
}

// NewClient creates a client for the given Twitch application.
func NewClient(clientID, clientSecret string, opts ...Option) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrNotConfigured
	}

	o := options{
		transport: http.DefaultTransport,
		tokenURL:  DefaultTokenURL,
		rps:       DefaultRequestsPerSecond,
		limit:     DefaultLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	tokenHTTP := &http.Client{Transport: o.transport, Timeout: 15 * time.Second}
	tokens := tokencache.New(Provider, time.Hour,
		twitchFetcher(tokenHTTP, o.tokenURL, clientID, clientSecret),
		tokencache.WithClock(o.now))

	httpClient := &http.Client{
		Transport: &authTransport{
			clientID: clientID,
			tokens:   tokens,
			limiter:  newLimiter(o.rps),
			next:     o.transport,
		},
		Timeout: 30 * time.Second,
	}

	return &Client{
		api:    igdbapi.NewClient(clientID, "", httpClient),
		tokens: tokens,
		limit:  o.limit,
	}, nil
}

// Search runs a single query matching any spelling of the names in terms.
func (c *Client) Search(ctx context.Context, terms []string) ([]Game, error) {
	return c.search(ctx, NameFilter(terms...), c.limit)
}

// search fetches up to limit games matching filter, most rated first.
func (c *Client) search(ctx context.Context, filter string, limit int) ([]Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filter == "" {
		return []Game{}, nil
	}

	raw, err := c.api.Games.Index(
		igdbapi.SetFields(searchFields...),
		setWhere(filter),
		igdbapi.SetOrder("total_rating_count", igdbapi.OrderDescending),
		igdbapi.SetLimit(limit),
	)
	if err != nil {
		if errors.Is(err, igdbapi.ErrNoResults) {
			return []Game{}, nil
		}
		return nil, errors.Wrapf(err, "igdb games where %s", filter)
	}

	return c.expand(ctx, raw), nil
}

// expand converts raw games, resolving platform and cover IDs in one
// request each. Lookup failures leave the fields empty.
func (c *Client) expand(ctx context.Context, raw []*igdbapi.Game) []Game {
	var platformIDs, coverIDs []int
	seenPlatform := make(map[int]struct{})
	for _, g := range raw {
		for _, p := range g.Platforms {
			if _, ok := seenPlatform[p]; !ok {
				seenPlatform[p] = struct{}{}
				platformIDs = append(platformIDs, p)
			}
		}
		if g.Cover != 0 {
			coverIDs = append(coverIDs, g.Cover)
		}
	}

	platforms := c.platformNames(ctx, platformIDs)
	covers := c.coverImages(ctx, coverIDs)

	out := make([]Game, 0, len(raw))
	for _, g := range raw {
		game := Game{
			ID:          g.ID,
			Name:        g.Name,
			Slug:        g.Slug,
			Rating:      g.TotalRating,
			RatingCount: g.TotalRatingCount,
		}
		if g.FirstReleaseDate != 0 {
			game.Year = time.Unix(int64(g.FirstReleaseDate), 0).UTC().Year()
		}
		for _, p := range g.Platforms {
			if name, ok := platforms[p]; ok {
				game.Platforms = append(game.Platforms, name)
			}
		}
		if img, ok := covers[g.Cover]; ok {
			game.Cover = CoverURL(img, "t_cover_big")
		}
		out = append(out, game)
	}
	return out
}

func (c *Client) platformNames(ctx context.Context, ids []int) map[int]string {
	names := make(map[int]string, len(ids))
	for _, page := range pages(ids) {
		if ctx.Err() != nil {
			break
		}
		platforms, err := c.api.Platforms.List(page, igdbapi.SetFields("name"), igdbapi.SetLimit(len(page)))
		if err != nil {
			logging.Warn("igdb platform lookup failed", "error", err)
			continue
		}
		for _, p := range platforms {
			names[p.ID] = p.Name
		}
	}
	return names
}

func (c *Client) coverImages(ctx context.Context, ids []int) map[int]string {
	images := make(map[int]string, len(ids))
	for _, page := range pages(ids) {
		if ctx.Err() != nil {
			break
		}
		covers, err := c.api.Covers.List(page, igdbapi.SetFields("image_id"), igdbapi.SetLimit(len(page)))
		if err != nil {
			logging.Warn("igdb cover lookup failed", "error", err)
			continue
		}
		for _, cv := range covers {
			images[cv.ID] = cv.ImageID
		}
	}
	return images
}

// pages splits ids into runs IGDB returns in full.
func pages(ids []int) [][]int {
	var out [][]int
	for len(ids) > 0 {
		n := min(len(ids), maxPage)
		out = append(out, ids[:n:n])
		ids = ids[n:]
	}
	return out
}
