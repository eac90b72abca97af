package igdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/ryanm101/gameid/internal/metrics"
	"github.com/ryanm101/gameid/internal/tokencache"
)

// DefaultTokenURL is the Twitch OAuth endpoint that issues IGDB app tokens.
const DefaultTokenURL = "https://id.twitch.tv/oauth2/token"

// tokenMargin is subtracted from the advertised lifetime.
const tokenMargin = 60 * time.Second

// ErrAuth is returned when Twitch refuses to issue a token.
var ErrAuth = errors.New("igdb: authentication failed")

// twitchFetcher returns a tokencache.Fetcher for the client-credentials grant.
func twitchFetcher(hc *http.Client, tokenURL, clientID, clientSecret string) tokencache.Fetcher {
	return func(ctx context.Context) (string, time.Duration, error) {
		vals := url.Values{}
		vals.Set("client_id", clientID)
		vals.Set("client_secret", clientSecret)
		vals.Set("grant_type", "client_credentials")

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(vals.Encode()))
		if err != nil {
			return "", 0, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := hc.Do(req)
		if err != nil {
			metrics.RecordUpstream(Provider, "token", 0)
			return "", 0, errors.Wrap(err, "twitch token")
		}
		defer func() { _ = resp.Body.Close() }()
		metrics.RecordUpstream(Provider, "token", resp.StatusCode)

		if resp.StatusCode != http.StatusOK {
			return "", 0, errors.Wrapf(ErrAuth, "unexpected status: %s", resp.Status)
		}

		var result struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", 0, errors.Wrap(err, "decode token response")
		}
		if result.AccessToken == "" {
			return "", 0, errors.Wrap(ErrAuth, "token response has no access_token")
		}

		ttl := time.Duration(result.ExpiresIn)*time.Second - tokenMargin
		if ttl <= 0 {
			ttl = time.Second
		}
		return result.AccessToken, ttl, nil
	}
}

// authTransport paces requests, adds IGDB credentials and drops the token
// when IGDB answers 401.
type authTransport struct {
	clientID string
	tokens   *tokencache.Cache
	limiter  *rate.Limiter
	next     http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "igdb rate limit")
	}

	token, err := t.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req = req.Clone(ctx)
	req.Header.Set("Client-ID", t.clientID)
	req.Header.Set("Authorization", "Bearer "+token)

	endpoint := path.Base(req.URL.Path)
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		metrics.RecordUpstream(Provider, endpoint, 0)
		return nil, err
	}
	metrics.RecordUpstream(Provider, endpoint, resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		t.tokens.Invalidate()
	}
	return resp, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
