package vault

import (
	"fmt"

	"github.com/google/uuid"

	"credvault/internal/store"
)

// Authenticator is the external platform verifier behind the biometric
// unlock path. It issues and asserts opaque handles; this package never
// sees biometric data, plaintext passphrases or key material through it.
type Authenticator interface {
	IsAvailable() bool
	// Register asks the platform to bind the handle to the local user.
	Register(handle string) bool
	// Authenticate runs the platform assertion ceremony and returns the
	// handle it vouches for, or ok=false.
	Authenticate() (handle string, ok bool)
}

// EnrollFallback registers a new authenticator handle and stores a copy
// of the current encrypted blob under it. Requires an unlocked vault.
// The stored copy is ciphertext only and is refreshed on every save.
func (v *Vault) EnrollFallback(auth Authenticator) (string, error) {
	if auth == nil || !auth.IsAvailable() {
		return "", ErrBiometricUnavailable
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session == nil {
		return "", ErrLocked
	}
	identity := v.session.Identity()

	blob, err := v.db.GetBlob(identity)
	if err != nil {
		return "", fmt.Errorf("loading blob: %w", err)
	}
	if blob == "" {
		return "", ErrNoSuchAccount
	}

	handle := uuid.NewString()
	if !auth.Register(handle) {
		return "", ErrBiometricFailed
	}
	if err := v.db.PutFallback(handle, identity, blob); err != nil {
		return "", fmt.Errorf("storing fallback: %w", err)
	}
	v.db.LogAccess(store.AuditEntry{IdentityHash: identity, Action: "fallback_enroll", Detail: handle})
	return handle, nil
}

// RetrieveFallback runs the authenticator assertion and returns the
// encrypted blob stored for the vouched handle. The blob is still sealed;
// opening it requires the master passphrase. Any failure here means the
// caller must fall back to passphrase entry — this path can never bypass
// encryption.
func (v *Vault) RetrieveFallback(auth Authenticator) (string, error) {
	if auth == nil || !auth.IsAvailable() {
		return "", ErrBiometricUnavailable
	}
	handle, ok := auth.Authenticate()
	if !ok {
		return "", ErrBiometricFailed
	}
	blob, err := v.db.GetFallback(handle)
	if err != nil {
		return "", fmt.Errorf("loading fallback: %w", err)
	}
	if blob == "" {
		return "", ErrBiometricFailed
	}
	return blob, nil
}

// RevokeFallback drops an enrolled handle. Requires an unlocked vault.
func (v *Vault) RevokeFallback(handle string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session == nil {
		return ErrLocked
	}
	if err := v.db.RemoveFallback(handle); err != nil {
		return err
	}
	v.db.LogAccess(store.AuditEntry{IdentityHash: v.session.Identity(), Action: "fallback_revoke", Detail: handle})
	return nil
}

// refreshFallbacksLocked rewrites every enrolled handle's blob copy so
// the fallback path never serves a stale vault. Caller holds v.mu.
func (v *Vault) refreshFallbacksLocked(identity, blob string) {
	handles, err := v.db.FallbackHandles(identity)
	if err != nil {
		v.logger.Warn("fallback refresh failed", "err", err)
		return
	}
	for _, h := range handles {
		if err := v.db.PutFallback(h, identity, blob); err != nil {
			v.logger.Warn("fallback refresh failed", "handle", h, "err", err)
		}
	}
}
