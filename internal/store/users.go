package store

import (
	"database/sql"
	"time"
)

// UserRecord is one row of the shared user registry. The identity hash is
// derived one-way from the master passphrase and is the only link between
// a passphrase and its vault blob.
type UserRecord struct {
	IdentityHash string    `json:"identity_hash"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login,omitzero"`
	Hint         string    `json:"hint,omitempty"`
}

// UpsertUser registers or updates a user record.
func (d *DB) UpsertUser(rec UserRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var lastLogin string
	if !rec.LastLogin.IsZero() {
		lastLogin = rec.LastLogin.UTC().Format(time.RFC3339)
	}
	_, err := d.conn.Exec(
		`INSERT INTO vault_users (identity_hash, created_at, last_login, hint)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(identity_hash) DO UPDATE SET last_login = excluded.last_login, hint = excluded.hint`,
		rec.IdentityHash, rec.CreatedAt.UTC().Format(time.RFC3339), lastLogin, rec.Hint,
	)
	return err
}

// GetUser retrieves a user record. Returns nil when absent.
func (d *DB) GetUser(identityHash string) (*UserRecord, error) {
	row := d.conn.QueryRow(
		"SELECT identity_hash, created_at, last_login, hint FROM vault_users WHERE identity_hash = ?",
		identityHash,
	)
	rec, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// TouchLastLogin records a successful login time.
func (d *DB) TouchLastLogin(identityHash string, at time.Time) error {
	_, err := d.conn.Exec(
		"UPDATE vault_users SET last_login = ? WHERE identity_hash = ?",
		at.UTC().Format(time.RFC3339), identityHash,
	)
	return err
}

// ListUsers returns every registered user, oldest first.
func (d *DB) ListUsers() ([]UserRecord, error) {
	rows, err := d.conn.Query(
		"SELECT identity_hash, created_at, last_login, hint FROM vault_users ORDER BY created_at",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		rec, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, *rec)
	}
	return users, rows.Err()
}

// RemoveUser deletes a user record and its vault blob and fallback copies.
func (d *DB) RemoveUser(identityHash string) error {
	for _, q := range []string{
		"DELETE FROM vault_fallback WHERE identity_hash = ?",
		"DELETE FROM vault_blobs WHERE identity_hash = ?",
		"DELETE FROM vault_users WHERE identity_hash = ?",
	} {
		if _, err := d.conn.Exec(q, identityHash); err != nil {
			return err
		}
	}
	return nil
}

func scanUser(scan func(...any) error) (*UserRecord, error) {
	var rec UserRecord
	var createdAt, lastLogin string
	if err := scan(&rec.IdentityHash, &createdAt, &lastLogin, &rec.Hint); err != nil {
		return nil, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if lastLogin != "" {
		rec.LastLogin, _ = time.Parse(time.RFC3339, lastLogin)
	}
	return &rec, nil
}
