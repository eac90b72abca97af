package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
)

// ResolvedGame is one cached resolution.
type ResolvedGame struct {
	Provider   string
	LookupKey  string
	ProviderID string
	Payload    []byte // JSON encoded provider result
	Score      float64
	ResolvedAt time.Time
}

// PutResolvedGame stores or replaces a resolution.
func (db *DB) PutResolvedGame(ctx context.Context, g ResolvedGame) error {
	query := `
		INSERT INTO resolved_games (provider, lookup_key, provider_id, payload, score, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider, lookup_key) DO UPDATE SET
			provider_id = excluded.provider_id,
			payload = excluded.payload,
			score = excluded.score,
			resolved_at = excluded.resolved_at
	`
	_, err := db.conn.ExecContext(ctx, query,
		g.Provider, g.LookupKey, g.ProviderID, string(g.Payload), g.Score, g.ResolvedAt.Unix())
	if err != nil {
		return errors.Wrap(err, "failed to save resolved game")
	}
	return nil
}

// GetResolvedGame returns the cached resolution, or nil if there is none.
func (db *DB) GetResolvedGame(ctx context.Context, provider, key string) (*ResolvedGame, error) {
	query := `
		SELECT provider, lookup_key, provider_id, payload, score, resolved_at
		FROM resolved_games WHERE provider = ? AND lookup_key = ?
	`
	row := db.conn.QueryRowContext(ctx, query, provider, key)

	var (
		g       ResolvedGame
		payload string
		at      int64
	)
	if err := row.Scan(&g.Provider, &g.LookupKey, &g.ProviderID, &payload, &g.Score, &at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get resolved game")
	}
	g.Payload = []byte(payload)
	g.ResolvedAt = time.Unix(at, 0)
	return &g, nil
}

// PurgeResolvedGames deletes resolutions older than before and returns
// the number removed. An empty provider matches all providers.
func (db *DB) PurgeResolvedGames(ctx context.Context, provider string, before time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM resolved_games WHERE (? = '' OR provider = ?) AND resolved_at < ?",
		provider, provider, before.Unix())
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge resolved games")
	}
	return res.RowsAffected()
}

// CountResolvedGames returns the number of cached resolutions per provider.
func (db *DB) CountResolvedGames(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT provider, COUNT(*) FROM resolved_games GROUP BY provider ORDER BY provider")
	if err != nil {
		return nil, errors.Wrap(err, "failed to count resolved games")
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			provider string
			n        int
		)
		if err := rows.Scan(&provider, &n); err != nil {
			return nil, err
		}
		counts[provider] = n
	}
	return counts, rows.Err()
}
