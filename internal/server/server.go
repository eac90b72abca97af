// Package server exposes the resolvers over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ryanm101/gameid/internal/db"
	"github.com/ryanm101/gameid/internal/hltb"
	"github.com/ryanm101/gameid/internal/igdb"
	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/match"
	"github.com/ryanm101/gameid/internal/metrics"
	"github.com/ryanm101/gameid/internal/resolve"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// CompletionFinder resolves identities to completion times.
type CompletionFinder interface {
	Find(ctx context.Context, id match.Identity) (*hltb.Result, error)
}

// GameMatcher resolves identities and partial titles against IGDB.
type GameMatcher interface {
	Match(ctx context.Context, id match.Identity) (*igdb.Game, error)
	Autocomplete(ctx context.Context, query string) ([]igdb.Suggestion, error)
}

// Server handles HTTP requests.
type Server struct {
	hltb CompletionFinder
	igdb GameMatcher
	db   *db.DB
	mux  *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithGameMatcher enables the IGDB routes.
func WithGameMatcher(m GameMatcher) Option {
	return func(s *Server) { s.igdb = m }
}

// WithDB enables database health checks and cache gauges.
func WithDB(d *db.DB) Option {
	return func(s *Server) { s.db = d }
}

// NewServer creates a new API server.
func NewServer(finder CompletionFinder, opts ...Option) *Server {
	s := &Server{
		hltb: finder,
		mux:  http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/hltb/game", s.handleHLTBGame)
	s.mux.HandleFunc("/api/igdb/match", s.handleIGDBMatch)
	s.mux.HandleFunc("/api/igdb/autocomplete", s.handleIGDBAutocomplete)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/metrics", s.handleMetrics)
}

func (s *Server) handleHLTBGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, ok := decodeIdentity(w, r)
	if !ok {
		return
	}

	res, err := s.hltb.Find(r.Context(), id)
	if err != nil {
		writeResolveError(w, hltb.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleIGDBMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.igdb == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("igdb not configured"))
		return
	}

	id, ok := decodeIdentity(w, r)
	if !ok {
		return
	}

	g, err := s.igdb.Match(r.Context(), id)
	if err != nil {
		writeResolveError(w, igdb.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleIGDBAutocomplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.igdb == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("igdb not configured"))
		return
	}

	games, err := s.igdb.Autocomplete(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		if errors.Is(err, igdb.ErrEmptyQuery) {
			writeJSON(w, http.StatusBadRequest, errorBody("missing query"))
			return
		}
		logging.Error("autocomplete failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("autocomplete failed"))
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		counts, err := s.db.CountResolvedGames(r.Context())
		if err != nil {
			logging.Warn("failed to update cache metrics", "error", err)
		} else {
			metrics.UpdateCacheMetrics(counts)
		}
	}
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	dbOK := true

	if s.db != nil {
		if err := s.db.Conn().PingContext(r.Context()); err != nil {
			status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
			dbOK = false
		}
	}

	writeJSON(w, statusCode, map[string]any{
		"status": status,
		"db":     dbOK,
		"igdb":   s.igdb != nil,
	})
}

// decodeIdentity reads the request body. It writes a 400 and returns
// false when the body is unreadable or the name is blank.
func decodeIdentity(w http.ResponseWriter, r *http.Request) (match.Identity, bool) {
	var id match.Identity
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&id); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid body"))
		return id, false
	}
	if err := id.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return id, false
	}
	return id, true
}

// writeResolveError maps resolver errors to responses. Unexpected errors
// are logged and reported without detail.
func writeResolveError(w http.ResponseWriter, provider string, err error) {
	switch {
	case errors.Is(err, match.ErrEmptyName):
		writeJSON(w, http.StatusBadRequest, errorBody("missing name"))
	case errors.Is(err, resolve.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	default:
		logging.Error("resolution failed", "provider", provider, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("fail"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
