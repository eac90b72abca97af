package main

import (
	"context"
	"net/http"

	"github.com/ryanm101/gameid/internal/db"
	"github.com/ryanm101/gameid/internal/hltb"
	"github.com/ryanm101/gameid/internal/igdb"
	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/match"
)

func loadVocabulary() (*match.Vocabulary, error) {
	if cfg.VocabularyPath == "" {
		return match.DefaultVocabulary(), nil
	}
	return match.LoadVocabulary(cfg.VocabularyPath)
}

// openStore opens the result cache database, or returns nil when caching
// is disabled.
func openStore(ctx context.Context, enabled bool) (*db.DB, error) {
	if !enabled || !cfg.Cache.Enabled {
		return nil, nil
	}
	return db.Open(ctx, cfg.DBPath)
}

func newHLTBService(vocab *match.Vocabulary, store *db.DB) *hltb.Service {
	client := hltb.NewClient(
		hltb.WithBaseURL(cfg.HLTB.BaseURL),
		hltb.WithUserAgent(cfg.HLTB.UserAgent),
		hltb.WithTokenTTL(cfg.HLTB.TokenTTL),
		hltb.WithPageSize(cfg.HLTB.PageSize),
		hltb.WithHTTPClient(&http.Client{Timeout: cfg.HLTB.Timeout}),
	)
	var cache *db.Cache[hltb.Result]
	if store != nil {
		cache = db.NewCache[hltb.Result](store, hltb.Provider, cfg.Cache.TTL)
	}
	return hltb.NewService(client, vocab, cache)
}

func newIGDBService(vocab *match.Vocabulary, store *db.DB) (*igdb.Service, error) {
	client, err := igdb.NewClient(cfg.IGDB.ClientID, cfg.IGDB.ClientSecret,
		igdb.WithRateLimit(cfg.IGDB.RequestsPerSecond),
		igdb.WithLimit(cfg.IGDB.Limit),
	)
	if err != nil {
		return nil, err
	}
	var cache *db.Cache[igdb.Game]
	if store != nil {
		cache = db.NewCache[igdb.Game](store, igdb.Provider, cfg.Cache.TTL)
	}
	return igdb.NewService(client, vocab, cache), nil
}

func closeStore(store *db.DB) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logging.Warn("failed to close database", "error", err)
	}
}
