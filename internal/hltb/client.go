// Package hltb resolves games against the HowLongToBeat completion-time index.
package hltb

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/metrics"
	"github.com/ryanm101/gameid/internal/tokencache"
)

// Provider is the name used in metrics, logs and the result cache.
const Provider = "hltb"

const (
	DefaultBaseURL   = "https://howlongtobeat.com"
	DefaultTokenTTL  = 30 * time.Minute
	DefaultPageSize  = 20
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var (
	// ErrAuth is returned when the init endpoint refuses to issue a token.
	ErrAuth = errors.New("hltb: authentication failed")
	// ErrUpstream is returned when the search endpoint answers non-2xx.
	ErrUpstream = errors.New("hltb: search failed")
)

// Client talks to the finder API. It keeps one session token, shared by
// all searches.
type Client struct {
	baseURL   string
	userAgent string
	pageSize  int
	tokenTTL  time.Duration
	http      *http.Client
	now       func() time.Time
	tokens    *tokencache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent overrides the browser user agent sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithPageSize sets the number of results requested per search.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// WithTokenTTL sets how long a session token is reused.
func WithTokenTTL(d time.Duration) Option {
	return func(c *Client) { c.tokenTTL = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a finder client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		pageSize:  DefaultPageSize,
		tokenTTL:  DefaultTokenTTL,
		http:      &http.Client{Timeout: 15 * time.Second},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	c.tokens = tokencache.New(Provider, c.tokenTTL, c.fetchToken, tokencache.WithClock(c.now))
	return c
}

// InvalidateToken drops the session token.
func (c *Client) InvalidateToken() {
	c.tokens.Invalidate()
}

func (c *Client) setBrowserHeaders(req *http.Request) {
	if u, err := url.Parse(c.baseURL); err == nil {
		req.Header.Set("Authority", u.Host)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.baseURL+"/")
	req.Header.Set("Origin", c.baseURL)
}

func (c *Client) fetchToken(ctx context.Context) (string, time.Duration, error) {
	u := c.baseURL + "/api/finder/init?t=" + strconv.FormatInt(c.now().UnixMilli(), 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", 0, err
	}
	c.setBrowserHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstream(Provider, "init", 0)
		return "", 0, errors.Wrap(err, "hltb init")
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstream(Provider, "init", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, errors.Wrapf(ErrAuth, "init status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, errors.Wrap(err, "decode init response")
	}
	if body.Token == "" {
		return "", 0, errors.Wrap(ErrAuth, "init response has no token")
	}
	return body.Token, 0, nil
}

// Search runs one finder query. Any non-2xx answer invalidates the session
// token so the next call re-authenticates.
func (c *Client) Search(ctx context.Context, terms []string) ([]Game, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(newFinderRequest(terms, c.pageSize))
	if err != nil {
		return nil, errors.Wrap(err, "encode finder request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/finder", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setBrowserHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Token", token)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstream(Provider, "finder", 0)
		c.InvalidateToken()
		return nil, errors.Wrap(err, "hltb finder")
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstream(Provider, "finder", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.FromContext(ctx, Provider).Debug("finder rejected search, dropping token", "status", resp.StatusCode)
		c.InvalidateToken()
		return nil, errors.Wrapf(ErrUpstream, "finder status %d", resp.StatusCode)
	}

	var body struct {
		Data []Game `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode finder response")
	}
	if body.Data == nil {
		return []Game{}, nil
	}
	return body.Data, nil
}
