package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current snapshot encoding version. Decoders accept
// any version up to and including this one.
const SchemaVersion = 1

var ErrEntryNotFound = errors.New("entry not found")

// Category groups entries for display. Referential integrity from entries
// is advisory: a dangling CategoryID is rendered as "Unknown" by callers.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Settings are per-vault preferences carried inside the encrypted snapshot.
type Settings struct {
	AutoLockMinutes  int  `json:"auto_lock_minutes"`
	ExpiryWindowDays int  `json:"expiry_window_days"`
	BreachCheck      bool `json:"breach_check"`
}

// DefaultSettings returns the settings a fresh vault starts with.
func DefaultSettings() Settings {
	return Settings{
		AutoLockMinutes:  15,
		ExpiryWindowDays: 90,
		BreachCheck:      true,
	}
}

// DefaultCategories returns the starter category set for a fresh vault.
func DefaultCategories() []Category {
	return []Category{
		{ID: uuid.NewString(), Name: "Logins", Color: "#4A90D9", Icon: "key"},
		{ID: uuid.NewString(), Name: "Banking", Color: "#2E9E5B", Icon: "bank"},
		{ID: uuid.NewString(), Name: "Work", Color: "#C94F4F", Icon: "briefcase"},
	}
}

// Snapshot is the complete decrypted state of one user's vault.
type Snapshot struct {
	Version      int               `json:"version"`
	Entries      []CredentialEntry `json:"entries"`
	Categories   []Category        `json:"categories"`
	Settings     Settings          `json:"settings"`
	LastModified time.Time         `json:"last_modified"`
}

// NewSnapshot returns the empty snapshot created at signup.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version:      SchemaVersion,
		Entries:      []CredentialEntry{},
		Categories:   DefaultCategories(),
		Settings:     DefaultSettings(),
		LastModified: time.Now().UTC(),
	}
}

// FindEntry returns a pointer to the entry with the given ID, or nil.
func (s *Snapshot) FindEntry(id string) *CredentialEntry {
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			return &s.Entries[i]
		}
	}
	return nil
}

// AddEntry appends e and bumps LastModified.
func (s *Snapshot) AddEntry(e CredentialEntry) {
	s.Entries = append(s.Entries, e)
	s.LastModified = time.Now().UTC()
}

// UpdateEntry replaces the entry with e.ID, preserving the immutable
// identifier and creation time and advancing the update timestamp.
func (s *Snapshot) UpdateEntry(e CredentialEntry) error {
	cur := s.FindEntry(e.ID)
	if cur == nil {
		return ErrEntryNotFound
	}
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = cur.UpdatedAt
	*cur = e
	cur.Touch()
	s.LastModified = time.Now().UTC()
	return nil
}

// RemoveEntry deletes the entry with the given ID.
func (s *Snapshot) RemoveEntry(id string) error {
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			s.LastModified = time.Now().UTC()
			return nil
		}
	}
	return ErrEntryNotFound
}

// CategoryName resolves a category reference, falling back to "Unknown"
// for dangling IDs.
func (s *Snapshot) CategoryName(id string) string {
	for _, c := range s.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "Unknown"
}
