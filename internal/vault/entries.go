package vault

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"credvault/internal/model"
	"credvault/internal/store"
)

var ErrInvalidFieldKind = errors.New("invalid custom field kind")

// Entries returns a copy of the decrypted entry list.
func (v *Vault) Entries() ([]model.CredentialEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.snapshot == nil {
		return nil, ErrLocked
	}
	entries := make([]model.CredentialEntry, len(v.snapshot.Entries))
	copy(entries, v.snapshot.Entries)
	return entries, nil
}

// Entry returns one entry by ID. When markUsed is set the read is recorded
// on the entry and the vault is re-persisted.
func (v *Vault) Entry(id string, markUsed bool) (*model.CredentialEntry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return nil, ErrLocked
	}
	e := v.snapshot.FindEntry(id)
	if e == nil {
		return nil, model.ErrEntryNotFound
	}
	if markUsed {
		e.MarkUsed()
		if err := v.scheduleSaveLocked(); err != nil {
			return nil, err
		}
	}
	cp := *e
	return &cp, nil
}

// AddEntry stores a new credential and persists the vault. Missing
// identifier and timestamps are filled in; custom field kinds must be one
// of the enumerated values.
func (v *Vault) AddEntry(e model.CredentialEntry) (*model.CredentialEntry, error) {
	if err := validateFields(e); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return nil, ErrLocked
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if v.snapshot.FindEntry(e.ID) != nil {
		return nil, fmt.Errorf("duplicate entry id %s", e.ID)
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.Before(e.CreatedAt) {
		e.UpdatedAt = e.CreatedAt
	}

	v.snapshot.AddEntry(e)
	if err := v.scheduleSaveLocked(); err != nil {
		return nil, err
	}
	cp := e
	return &cp, nil
}

// UpdateEntry replaces a stored entry and persists the vault. Identifier
// and creation time are immutable; the update timestamp always advances.
func (v *Vault) UpdateEntry(e model.CredentialEntry) (*model.CredentialEntry, error) {
	if err := validateFields(e); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return nil, ErrLocked
	}
	if err := v.snapshot.UpdateEntry(e); err != nil {
		return nil, err
	}
	if err := v.scheduleSaveLocked(); err != nil {
		return nil, err
	}
	cp := *v.snapshot.FindEntry(e.ID)
	return &cp, nil
}

// DeleteEntry removes an entry and persists the vault.
func (v *Vault) DeleteEntry(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return ErrLocked
	}
	if err := v.snapshot.RemoveEntry(id); err != nil {
		return err
	}
	return v.scheduleSaveLocked()
}

// Categories returns a copy of the category list.
func (v *Vault) Categories() ([]model.Category, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.snapshot == nil {
		return nil, ErrLocked
	}
	cats := make([]model.Category, len(v.snapshot.Categories))
	copy(cats, v.snapshot.Categories)
	return cats, nil
}

// AddCategory creates a category and persists the vault.
func (v *Vault) AddCategory(name, color, icon string) (*model.Category, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return nil, ErrLocked
	}
	cat := model.Category{ID: uuid.NewString(), Name: name, Color: color, Icon: icon}
	v.snapshot.Categories = append(v.snapshot.Categories, cat)
	v.snapshot.LastModified = time.Now().UTC()
	if err := v.scheduleSaveLocked(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory removes a category. Entries referencing it keep their
// dangling reference; readers fall back to "Unknown".
func (v *Vault) DeleteCategory(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return ErrLocked
	}
	for i, c := range v.snapshot.Categories {
		if c.ID == id {
			v.snapshot.Categories = append(v.snapshot.Categories[:i], v.snapshot.Categories[i+1:]...)
			v.snapshot.LastModified = time.Now().UTC()
			return v.scheduleSaveLocked()
		}
	}
	return fmt.Errorf("category %s not found", id)
}

// Settings returns the current vault settings.
func (v *Vault) Settings() (*model.Settings, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.snapshot == nil {
		return nil, ErrLocked
	}
	s := v.snapshot.Settings
	return &s, nil
}

// UpdateSettings replaces the settings, rearms the idle timer to the new
// auto-lock threshold and persists the vault.
func (v *Vault) UpdateSettings(s model.Settings) error {
	if s.AutoLockMinutes < 0 || s.ExpiryWindowDays < 0 {
		return fmt.Errorf("settings values must not be negative")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return ErrLocked
	}
	v.snapshot.Settings = s
	v.snapshot.LastModified = time.Now().UTC()
	v.session.SetTTL(time.Duration(s.AutoLockMinutes) * time.Minute)
	return v.scheduleSaveLocked()
}

// ExportBundle is the plaintext export format. The file is not
// independently encrypted; emitting it is gated on an authenticated
// session.
type ExportBundle struct {
	Passwords  []model.CredentialEntry `json:"passwords"`
	Categories []model.Category        `json:"categories"`
	Settings   model.Settings          `json:"settings"`
	ExportDate time.Time               `json:"exportDate"`
	UserHash   string                  `json:"userHash"`
	Version    int                     `json:"version"`
}

// Export returns the full decrypted snapshot in the export format.
func (v *Vault) Export() (*ExportBundle, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.snapshot == nil || v.session == nil {
		return nil, ErrLocked
	}
	bundle := &ExportBundle{
		Passwords:  append([]model.CredentialEntry{}, v.snapshot.Entries...),
		Categories: append([]model.Category{}, v.snapshot.Categories...),
		Settings:   v.snapshot.Settings,
		ExportDate: time.Now().UTC(),
		UserHash:   v.session.Identity(),
		Version:    v.snapshot.Version,
	}
	v.db.LogAccess(store.AuditEntry{IdentityHash: v.session.Identity(), Action: "export"})
	return bundle, nil
}

func validateFields(e model.CredentialEntry) error {
	for _, f := range e.Fields {
		if !model.ValidFieldKind(f.Kind) {
			return fmt.Errorf("%w: %q", ErrInvalidFieldKind, f.Kind)
		}
	}
	return nil
}

func passphraseHint(passphrase string) string {
	if len(passphrase) < 3 {
		return fmt.Sprintf("(%d chars)", len(passphrase))
	}
	return fmt.Sprintf("%s*** (%d chars)", passphrase[:2], len(passphrase))
}
