package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const createSchema = `
CREATE TABLE IF NOT EXISTS vault_users (
	identity_hash TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	last_login    TEXT NOT NULL DEFAULT '',
	hint          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS vault_blobs (
	identity_hash TEXT PRIMARY KEY,
	blob          TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vault_fallback (
	handle        TEXT PRIMARY KEY,
	identity_hash TEXT NOT NULL,
	blob          TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vault_access_log (
	id            TEXT PRIMARY KEY,
	identity_hash TEXT NOT NULL,
	action        TEXT NOT NULL,
	detail        TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fallback_identity ON vault_fallback(identity_hash);
CREATE INDEX IF NOT EXISTS idx_access_log_created ON vault_access_log(created_at);
`

// DB wraps a *sql.DB with vault-specific operations. One database is
// shared by all users on the device; each user's data is namespaced by
// identity hash.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the vault database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting %s: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(createSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}
