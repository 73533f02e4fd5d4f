package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"credvault/internal/codec"
	"credvault/internal/crypto"
	"credvault/internal/model"
	"credvault/internal/store"
)

var ErrEmptyPassphrase = errors.New("passphrase must not be empty")

// Vault orchestrates the per-user encrypted store: derive key, decrypt,
// decode on login; encode, encrypt, persist on every mutation. At most
// one session is active at a time.
type Vault struct {
	mu       sync.RWMutex
	db       *store.DB
	logger   *slog.Logger
	session  *Session
	snapshot *model.Snapshot

	// Saves may complete out of order; only a blob carrying a sequence
	// newer than the last persisted one is allowed to land.
	saveSeq  uint64
	savedSeq uint64
	saves    sync.WaitGroup
}

// New creates a vault backed by the given store.
func New(db *store.DB, logger *slog.Logger) *Vault {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{db: db, logger: logger}
}

// Status describes the vault to callers that hold no session.
type Status struct {
	Locked  bool `json:"locked"`
	Users   int  `json:"users"`
	Entries int  `json:"entries,omitempty"`
}

// Signup creates a new account: fresh salt, derived key, an encrypted
// empty snapshot persisted under the identity hash, and a registry record.
// Returns the session token of the now-unlocked vault.
func (v *Vault) Signup(passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.session != nil {
		return "", ErrAlreadyUnlocked
	}

	identity := crypto.IdentityHash([]byte(passphrase))
	exists, err := v.db.HasBlob(identity)
	if err != nil {
		return "", fmt.Errorf("checking account: %w", err)
	}
	if exists {
		// Sole collision check: passphrases are never stored, so a blob
		// under the same identity hash is what "account exists" means.
		return "", ErrAccountExists
	}

	snap := model.NewSnapshot()
	blob, err := sealSnapshot([]byte(passphrase), snap)
	if err != nil {
		return "", err
	}
	if err := v.db.PutBlob(identity, blob); err != nil {
		return "", fmt.Errorf("persisting vault: %w", err)
	}
	if err := v.db.UpsertUser(store.UserRecord{
		IdentityHash: identity,
		Hint:         passphraseHint(passphrase),
	}); err != nil {
		return "", fmt.Errorf("registering user: %w", err)
	}

	session, err := v.startSessionLocked(identity, passphrase, snap)
	if err != nil {
		return "", err
	}
	v.saveSeq, v.savedSeq = 1, 1

	v.db.LogAccess(store.AuditEntry{IdentityHash: identity, Action: "signup"})
	v.logger.Info("vault created", "identity", identity[:8])
	return session.Token(), nil
}

// Login unlocks an existing account. An absent blob is ErrNoSuchAccount;
// any decrypt failure — wrong passphrase or tampered ciphertext — is
// reported uniformly as ErrAuthenticationFailed.
func (v *Vault) Login(passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.session != nil {
		return "", ErrAlreadyUnlocked
	}

	identity := crypto.IdentityHash([]byte(passphrase))
	encoded, err := v.db.GetBlob(identity)
	if err != nil {
		return "", fmt.Errorf("loading vault: %w", err)
	}
	if encoded == "" {
		return "", ErrNoSuchAccount
	}

	blob, err := crypto.DecodeBlob(encoded)
	if err != nil {
		return "", ErrAuthenticationFailed
	}
	salt, err := crypto.Salt(blob)
	if err != nil {
		return "", ErrAuthenticationFailed
	}

	key := crypto.DeriveKey([]byte(passphrase), salt)
	defer crypto.Zero(key)

	plaintext, err := crypto.Open(key, blob)
	if err != nil {
		v.db.LogAccess(store.AuditEntry{IdentityHash: identity, Action: "login_failed"})
		return "", ErrAuthenticationFailed
	}

	snap, err := codec.Decode(plaintext)
	if err != nil {
		// Authenticated plaintext that does not decode is a schema bug,
		// not an attack; surfaced as-is for diagnostics.
		return "", err
	}

	session, err := v.startSessionLocked(identity, passphrase, snap)
	if err != nil {
		return "", err
	}
	v.saveSeq, v.savedSeq = 0, 0

	now := time.Now().UTC()
	v.db.TouchLastLogin(identity, now)
	v.db.LogAccess(store.AuditEntry{IdentityHash: identity, Action: "login"})
	v.logger.Info("vault unlocked", "identity", identity[:8], "entries", len(snap.Entries))
	return session.Token(), nil
}

func (v *Vault) startSessionLocked(identity, passphrase string, snap *model.Snapshot) (*Session, error) {
	ttl := time.Duration(snap.Settings.AutoLockMinutes) * time.Minute
	session, err := NewSession(identity, []byte(passphrase), ttl, func() {
		v.onAutoLock(identity)
	})
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	v.session = session
	v.snapshot = snap
	return session, nil
}

func (v *Vault) onAutoLock(identity string) {
	// Let in-flight saves land before the sequence counters are reused
	// by a later login.
	v.saves.Wait()

	v.mu.Lock()
	v.session = nil
	v.snapshot = nil
	v.mu.Unlock()
	v.db.LogAccess(store.AuditEntry{IdentityHash: identity, Action: "auto_lock"})
	v.logger.Info("vault auto-locked", "identity", identity[:8])
}

// Logout waits for pending saves, discards the in-memory snapshot and
// zeroes the session. Persisted data is untouched.
func (v *Vault) Logout() {
	v.saves.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session == nil {
		return
	}
	identity := v.session.Identity()
	v.session.Destroy()
	v.session = nil
	v.snapshot = nil
	v.db.LogAccess(store.AuditEntry{IdentityHash: identity, Action: "logout"})
	v.logger.Info("vault locked", "identity", identity[:8])
}

// Flush waits for all scheduled saves to complete. Intended for shutdown
// paths and tests.
func (v *Vault) Flush() {
	v.saves.Wait()
}

// ValidateToken checks a bearer token against the active session.
func (v *Vault) ValidateToken(token string) bool {
	v.mu.RLock()
	s := v.session
	v.mu.RUnlock()
	return s != nil && s.ValidateToken(token)
}

// TouchSession rearms the idle timer on user activity.
func (v *Vault) TouchSession() {
	v.mu.RLock()
	s := v.session
	v.mu.RUnlock()
	if s != nil {
		s.Touch()
	}
}

// Status reports lock state and registry size; entry count only while
// unlocked.
func (v *Vault) Status() (*Status, error) {
	users, err := v.db.ListUsers()
	if err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	st := &Status{Locked: v.session == nil, Users: len(users)}
	if v.snapshot != nil {
		st.Entries = len(v.snapshot.Entries)
	}
	return st, nil
}

// Users lists the shared registry: identity hashes, timestamps and hints.
func (v *Vault) Users() ([]store.UserRecord, error) {
	return v.db.ListUsers()
}

// Audit returns recent audit entries for the authenticated identity.
func (v *Vault) Audit(limit int) ([]store.AuditEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.session == nil {
		return nil, ErrLocked
	}
	return v.db.GetAuditLog(v.session.Identity(), limit)
}

// sealSnapshot encodes and encrypts a snapshot under a key derived from
// the passphrase with a fresh random salt. Each save gets a new salt and
// therefore a new key; the nonce inside Seal is fresh on its own.
func sealSnapshot(passphrase []byte, snap *model.Snapshot) (string, error) {
	data, err := codec.Encode(snap)
	if err != nil {
		return "", err
	}
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key := crypto.DeriveKey(passphrase, salt)
	defer crypto.Zero(key)
	return crypto.SealToBase64(key, salt, data)
}

// scheduleSaveLocked re-encrypts the full snapshot in the background.
// Caller holds v.mu. Key derivation is CPU-bound and runs off the calling
// path; completions landing out of order are discarded by sequence.
func (v *Vault) scheduleSaveLocked() error {
	if v.session == nil {
		return ErrLocked
	}
	data, err := codec.Encode(v.snapshot)
	if err != nil {
		return err
	}
	passphrase := v.session.Passphrase()
	if passphrase == nil {
		return ErrLocked
	}
	identity := v.session.Identity()

	v.saveSeq++
	seq := v.saveSeq

	v.saves.Add(1)
	go func() {
		defer v.saves.Done()
		defer crypto.Zero(passphrase)

		salt, err := crypto.GenerateSalt()
		if err != nil {
			v.logger.Error("save failed", "identity", identity[:8], "err", err)
			return
		}
		key := crypto.DeriveKey(passphrase, salt)
		defer crypto.Zero(key)

		blob, err := crypto.SealToBase64(key, salt, data)
		if err != nil {
			v.logger.Error("save failed", "identity", identity[:8], "err", err)
			return
		}

		v.mu.Lock()
		defer v.mu.Unlock()
		if seq <= v.savedSeq {
			// A newer snapshot already landed; this one is stale.
			return
		}
		if err := v.db.PutBlob(identity, blob); err != nil {
			v.logger.Error("save failed", "identity", identity[:8], "err", err)
			return
		}
		v.savedSeq = seq
		v.refreshFallbacksLocked(identity, blob)
		v.db.LogAccess(store.AuditEntry{IdentityHash: identity, Action: "save"})
	}()
	return nil
}
