package model

import (
	"time"

	"github.com/google/uuid"
)

// FieldKind enumerates the allowed custom field types.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldPassword FieldKind = "password"
	FieldEmail    FieldKind = "email"
	FieldURL      FieldKind = "url"
)

// ValidFieldKind reports whether k is one of the enumerated kinds.
func ValidFieldKind(k FieldKind) bool {
	switch k {
	case FieldText, FieldPassword, FieldEmail, FieldURL:
		return true
	}
	return false
}

// CustomField is a typed extra field attached to an entry.
type CustomField struct {
	Label string    `json:"label"`
	Kind  FieldKind `json:"kind"`
	Value string    `json:"value"`
}

// CredentialEntry is a single stored credential. The ID is immutable and
// unique within a vault; UpdatedAt strictly increases on every mutation.
type CredentialEntry struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Username    string        `json:"username"`
	Secret      string        `json:"secret"`
	URL         string        `json:"url,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Fields      []CustomField `json:"fields,omitempty"`
	CategoryID  string        `json:"category_id,omitempty"`
	Favorite    bool          `json:"favorite,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	LastUsedAt  time.Time     `json:"last_used_at,omitzero"`
	ExpiresAt   time.Time     `json:"expires_at,omitzero"`
	Compromised bool          `json:"compromised,omitempty"`
	Strength    int           `json:"strength,omitempty"`
	TOTPSeed    string        `json:"totp_seed,omitempty"`
}

// NewEntry creates an entry with a fresh identifier and creation timestamps.
func NewEntry(title, username, secret string) CredentialEntry {
	now := time.Now().UTC()
	return CredentialEntry{
		ID:        uuid.NewString(),
		Title:     title,
		Username:  username,
		Secret:    secret,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch advances UpdatedAt, keeping it strictly greater than its previous
// value even when the clock has not visibly moved between two mutations.
func (e *CredentialEntry) Touch() {
	now := time.Now().UTC()
	if !now.After(e.UpdatedAt) {
		now = e.UpdatedAt.Add(time.Nanosecond)
	}
	e.UpdatedAt = now
}

// MarkUsed records that the secret was read.
func (e *CredentialEntry) MarkUsed() {
	e.LastUsedAt = time.Now().UTC()
}
