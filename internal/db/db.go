// Package db stores resolved provider results in SQLite.
package db

import (
	"context"
	"database/sql"

	"github.com/XSAM/otelsql"
	"github.com/cockroachdb/errors"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates a SQLite database at the given path.
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := otelsql.Open("sqlite", path,
		otelsql.WithAttributes(semconv.DBSystemSqlite),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// SQLite has a single writer.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to enable WAL")
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// migrate runs database migrations up to the current schema version.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return errors.Wrap(err, "failed to create schema_version table")
	}

	var version int
	err := db.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return errors.Wrap(err, "failed to get schema version")
	}

	if version < 1 {
		if err := db.migrateV1(ctx); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := db.migrateV2(ctx); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the result cache.
func (db *DB) migrateV1(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS resolved_games (
			provider TEXT NOT NULL,
			lookup_key TEXT NOT NULL,
			provider_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			resolved_at INTEGER NOT NULL,
			PRIMARY KEY (provider, lookup_key)
		);

		CREATE INDEX IF NOT EXISTS idx_resolved_games_resolved_at ON resolved_games(resolved_at);

		INSERT INTO schema_version (version) VALUES (1);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to execute v1 migration")
	}

	return nil
}

// migrateV2 records the score a cached result was accepted with.
func (db *DB) migrateV2(ctx context.Context) error {
	schema := `
		ALTER TABLE resolved_games ADD COLUMN score REAL NOT NULL DEFAULT 0;

		INSERT INTO schema_version (version) VALUES (2);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to execute v2 migration")
	}

	return nil
}
