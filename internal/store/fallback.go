package store

import (
	"database/sql"
	"time"
)

// PutFallback stores an already-encrypted vault blob keyed by an
// authenticator-issued handle. Only ciphertext ever lands here; the
// fallback path has no key material of its own.
func (d *DB) PutFallback(handle, identityHash, blob string) error {
	_, err := d.conn.Exec(
		`INSERT INTO vault_fallback (handle, identity_hash, blob, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(handle) DO UPDATE SET blob = excluded.blob`,
		handle, identityHash, blob, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetFallback retrieves the encrypted blob for a handle. Returns "" when
// the handle is not enrolled.
func (d *DB) GetFallback(handle string) (string, error) {
	var blob string
	err := d.conn.QueryRow(
		"SELECT blob FROM vault_fallback WHERE handle = ?", handle,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return blob, nil
}

// FallbackHandles lists the handles enrolled for one identity.
func (d *DB) FallbackHandles(identityHash string) ([]string, error) {
	rows, err := d.conn.Query(
		"SELECT handle FROM vault_fallback WHERE identity_hash = ? ORDER BY created_at", identityHash,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

// RemoveFallback drops an enrolled handle.
func (d *DB) RemoveFallback(handle string) error {
	_, err := d.conn.Exec("DELETE FROM vault_fallback WHERE handle = ?", handle)
	return err
}
