package store

import (
	"database/sql"
	"time"
)

// PutBlob stores or replaces the encrypted vault blob for one user.
// The blob is the base64 form of salt || nonce || ciphertext+tag.
func (d *DB) PutBlob(identityHash, blob string) error {
	_, err := d.conn.Exec(
		`INSERT INTO vault_blobs (identity_hash, blob, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(identity_hash) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		identityHash, blob, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetBlob retrieves a user's encrypted blob. Returns "" when absent.
func (d *DB) GetBlob(identityHash string) (string, error) {
	var blob string
	err := d.conn.QueryRow(
		"SELECT blob FROM vault_blobs WHERE identity_hash = ?", identityHash,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return blob, nil
}

// HasBlob reports whether a vault blob exists for the identity.
func (d *DB) HasBlob(identityHash string) (bool, error) {
	blob, err := d.GetBlob(identityHash)
	return blob != "", err
}
