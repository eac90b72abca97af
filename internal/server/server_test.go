package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ryanm101/gameid/internal/db"
	"github.com/ryanm101/gameid/internal/hltb"
	"github.com/ryanm101/gameid/internal/igdb"
	"github.com/ryanm101/gameid/internal/match"
	"github.com/ryanm101/gameid/internal/resolve"
)

type mockFinder struct{ mock.Mock }

func (m *mockFinder) Find(ctx context.Context, id match.Identity) (*hltb.Result, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*hltb.Result)
	return res, args.Error(1)
}

type mockMatcher struct{ mock.Mock }

func (m *mockMatcher) Match(ctx context.Context, id match.Identity) (*igdb.Game, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*igdb.Game)
	return g, args.Error(1)
}

func (m *mockMatcher) Autocomplete(ctx context.Context, query string) ([]igdb.Suggestion, error) {
	args := m.Called(ctx, query)
	s, _ := args.Get(0).([]igdb.Suggestion)
	return s, args.Error(1)
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func TestHLTBGame_Found(t *testing.T) {
	f := &mockFinder{}
	want := match.Identity{Name: "The Legend of Zelda", AlternateNames: []string{"Zelda"}, Year: 1986}
	main := 10.0
	f.On("Find", mock.Anything, want).Return(&hltb.Result{
		ID: 1, Name: "The Legend of Zelda", ReleaseYear: 1986, Times: hltb.Times{Main: &main},
	}, nil)
	s := NewServer(f)

	rr := do(s, http.MethodPost, "/api/hltb/game",
		`{"name":"  The Legend of Zelda ","altNames":["Zelda"],"year":1986}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"id":1,"name":"The Legend of Zelda","image":null,"releaseYear":1986,"reviewScore":0,"platforms":"",
		"times":{"main":10,"mainExtra":null,"completionist":null,"allStyles":null}
	}`, rr.Body.String())
	f.AssertExpectations(t)
}

func TestHLTBGame_Errors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		body     string
		findErr  error
		wantCode int
		wantBody string
	}{
		{"wrong method", http.MethodGet, "", nil, http.StatusMethodNotAllowed, ""},
		{"missing name", http.MethodPost, `{"year":1986}`, nil, http.StatusBadRequest, `{"error":"missing name"}`},
		{"blank name", http.MethodPost, `{"name":"   "}`, nil, http.StatusBadRequest, `{"error":"missing name"}`},
		{"malformed", http.MethodPost, `{"name":`, nil, http.StatusBadRequest, `{"error":"invalid body"}`},
		{"not found", http.MethodPost, `{"name":"Nope"}`, resolve.ErrNotFound, http.StatusNotFound, `{"error":"not found"}`},
		{"upstream", http.MethodPost, `{"name":"Nope"}`, errors.Wrap(hltb.ErrUpstream, "finder status 503"), http.StatusInternalServerError, `{"error":"fail"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &mockFinder{}
			if tt.findErr != nil {
				f.On("Find", mock.Anything, mock.Anything).Return(nil, tt.findErr)
			}
			s := NewServer(f)

			rr := do(s, tt.method, "/api/hltb/game", tt.body)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			}
			if tt.findErr == nil {
				f.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestIGDBMatch(t *testing.T) {
	m := &mockMatcher{}
	m.On("Match", mock.Anything, match.Identity{Name: "Hades", Platforms: []string{"Switch"}}).
		Return(&igdb.Game{ID: 1, Name: "Hades", Slug: "hades"}, nil)
	s := NewServer(&mockFinder{}, WithGameMatcher(m))

	rr := do(s, http.MethodPost, "/api/igdb/match", `{"name":"Hades","platforms":["Switch"]}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"name":"Hades","slug":"hades","ratingCount":0}`, rr.Body.String())
}

func TestIGDB_NotConfigured(t *testing.T) {
	s := NewServer(&mockFinder{})

	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodPost, "/api/igdb/match", `{"name":"Hades"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, "/api/igdb/autocomplete?query=ha", "").Code)
}

func TestIGDBAutocomplete(t *testing.T) {
	m := &mockMatcher{}
	m.On("Autocomplete", mock.Anything, "hades").Return([]igdb.Suggestion{{ID: 1, Name: "Hades", Relevance: 1514}}, nil)
	m.On("Autocomplete", mock.Anything, "").Return(nil, igdb.ErrEmptyQuery)
	m.On("Autocomplete", mock.Anything, "boom").Return(nil, assert.AnError)
	s := NewServer(&mockFinder{}, WithGameMatcher(m))

	rr := do(s, http.MethodGet, "/api/igdb/autocomplete?query=hades", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Hades","slug":"","year":null,"relevance":1514,"cover":null}]`, rr.Body.String())

	rr = do(s, http.MethodGet, "/api/igdb/autocomplete", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"missing query"}`, rr.Body.String())

	rr = do(s, http.MethodGet, "/api/igdb/autocomplete?query=boom", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	assert.Equal(t, http.StatusMethodNotAllowed, do(s, http.MethodPost, "/api/igdb/autocomplete", "").Code)
}

func TestHealth(t *testing.T) {
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	s := NewServer(&mockFinder{}, WithDB(store))

	rr := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy","db":true,"igdb":false}`, rr.Body.String())

	require.NoError(t, store.Close())
	rr = do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestMetrics(t *testing.T) {
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.PutResolvedGame(context.Background(), db.ResolvedGame{
		Provider: hltb.Provider, LookupKey: "k", ProviderID: "1", Payload: []byte(`{}`), ResolvedAt: time.Now(),
	}))
	s := NewServer(&mockFinder{}, WithDB(store))

	rr := do(s, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `gameid_cached_results{provider="hltb"} 1`)
}
