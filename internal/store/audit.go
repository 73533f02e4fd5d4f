package store

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// AuditEntry represents a row in vault_access_log.
type AuditEntry struct {
	ID           string    `json:"id"`
	IdentityHash string    `json:"identity_hash"`
	Action       string    `json:"action"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogAccess writes an audit entry.
func (d *DB) LogAccess(entry AuditEntry) error {
	if entry.ID == "" {
		b := make([]byte, 16)
		rand.Read(b)
		entry.ID = hex.EncodeToString(b)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := d.conn.Exec(
		`INSERT INTO vault_access_log (id, identity_hash, action, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.IdentityHash, entry.Action, entry.Detail,
		entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetAuditLog retrieves recent audit entries for one identity, newest first.
func (d *DB) GetAuditLog(identityHash string, limit int) ([]AuditEntry, error) {
	rows, err := d.conn.Query(
		`SELECT id, identity_hash, action, detail, created_at FROM vault_access_log
		 WHERE identity_hash = ? ORDER BY created_at DESC LIMIT ?`,
		identityHash, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.IdentityHash, &e.Action, &e.Detail, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
