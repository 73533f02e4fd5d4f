package vault

import (
	"encoding/base64"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"credvault/internal/crypto"
	"credvault/internal/model"
	"credvault/internal/store"
)

func testVault(t *testing.T) (*Vault, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, nil), db
}

func TestSignup_CreatesEmptyVault(t *testing.T) {
	v, _ := testVault(t)

	token, err := v.Signup("Ajaykanna@123")
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Fatal("expected session token")
	}

	entries, err := v.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("fresh vault should be empty, got %d entries", len(entries))
	}

	cats, err := v.Categories()
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) == 0 {
		t.Fatal("fresh vault should have default categories")
	}

	users, _ := v.Users()
	if len(users) != 1 {
		t.Fatalf("expected 1 registry record, got %d", len(users))
	}
	if users[0].Hint == "" {
		t.Fatal("registry record should carry a hint")
	}
}

func TestSignup_AccountExists(t *testing.T) {
	v, _ := testVault(t)

	if _, err := v.Signup("Ajaykanna@123"); err != nil {
		t.Fatal(err)
	}
	v.Logout()

	if _, err := v.Signup("Ajaykanna@123"); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestSignup_EmptyPassphrase(t *testing.T) {
	v, _ := testVault(t)
	if _, err := v.Signup(""); !errors.Is(err, ErrEmptyPassphrase) {
		t.Fatalf("expected ErrEmptyPassphrase, got %v", err)
	}
}

func TestLogin_NoSuchAccount(t *testing.T) {
	v, _ := testVault(t)
	if _, err := v.Login("nobody-here"); !errors.Is(err, ErrNoSuchAccount) {
		t.Fatalf("expected ErrNoSuchAccount, got %v", err)
	}
}

func TestLogin_WrongPassphraseMatchesTamperError(t *testing.T) {
	v, db := testVault(t)

	if _, err := v.Signup("Ajaykanna@123"); err != nil {
		t.Fatal(err)
	}
	v.Logout()

	// Wrong passphrase on an existing account: the identity hash differs,
	// so there is no blob — reported as no such account, which reveals
	// nothing about other passphrases' vaults.
	if _, err := v.Login("Ajaykanna@124"); !errors.Is(err, ErrNoSuchAccount) {
		t.Fatalf("expected ErrNoSuchAccount, got %v", err)
	}

	// Tampered ciphertext with the correct passphrase must surface the
	// uniform authentication failure.
	identity := crypto.IdentityHash([]byte("Ajaykanna@123"))
	encoded, err := db.GetBlob(identity)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-1] ^= 0x01
	db.PutBlob(identity, base64.StdEncoding.EncodeToString(raw))

	if _, err := v.Login("Ajaykanna@123"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestScenario_SignupAddLogoutLogin(t *testing.T) {
	v, _ := testVault(t)

	if _, err := v.Signup("Ajaykanna@123"); err != nil {
		t.Fatal(err)
	}

	added, err := v.AddEntry(model.NewEntry("Gmail", "a@b.com", "abc"))
	if err != nil {
		t.Fatal(err)
	}
	v.Logout()

	if _, err := v.Entries(); !errors.Is(err, ErrLocked) {
		t.Fatal("entries must be unreadable after logout")
	}

	if _, err := v.Login("Ajaykanna@123"); err != nil {
		t.Fatal(err)
	}
	entries, err := v.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.ID != added.ID || got.Title != "Gmail" || got.Username != "a@b.com" || got.Secret != "abc" {
		t.Fatalf("entry fields lost across logout/login: %+v", got)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatal("updated_at must be >= created_at")
	}
	v.Logout()
}

func TestUpdateEntry_PreservesIdentityAndAdvancesTimestamp(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-update-test")
	defer v.Logout()

	added, _ := v.AddEntry(model.NewEntry("Site", "user", "old-secret"))

	mod := *added
	mod.Secret = "new-secret"
	mod.CreatedAt = time.Now().Add(time.Hour) // must be ignored

	updated, err := v.UpdateEntry(mod)
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != added.ID {
		t.Fatal("identifier must be immutable")
	}
	if !updated.CreatedAt.Equal(added.CreatedAt) {
		t.Fatal("creation time must be immutable")
	}
	if !updated.UpdatedAt.After(added.UpdatedAt) {
		t.Fatal("update timestamp must strictly increase on every mutation")
	}
	if updated.Secret != "new-secret" {
		t.Fatal("secret change lost")
	}
}

func TestUpdateEntry_NotFound(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-nf-test")
	defer v.Logout()

	e := model.NewEntry("Ghost", "u", "s")
	if _, err := v.UpdateEntry(e); !errors.Is(err, model.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if err := v.DeleteEntry(e.ID); !errors.Is(err, model.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestAddEntry_InvalidFieldKind(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-kind-test")
	defer v.Logout()

	e := model.NewEntry("Site", "u", "s")
	e.Fields = []model.CustomField{{Label: "x", Kind: "json", Value: "{}"}}
	if _, err := v.AddEntry(e); !errors.Is(err, ErrInvalidFieldKind) {
		t.Fatalf("expected ErrInvalidFieldKind, got %v", err)
	}
}

func TestSave_LatestWriteWins(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-seq-test")

	// Burst of mutations schedules overlapping background saves; after
	// Flush the persisted blob must reflect the final state.
	for i := 0; i < 5; i++ {
		if _, err := v.AddEntry(model.NewEntry("Site", "user", "secret")); err != nil {
			t.Fatal(err)
		}
	}
	v.Flush()
	v.Logout()

	if _, err := v.Login("pw-seq-test"); err != nil {
		t.Fatal(err)
	}
	defer v.Logout()

	entries, _ := v.Entries()
	if len(entries) != 5 {
		t.Fatalf("expected all 5 entries persisted, got %d", len(entries))
	}
}

func TestEntry_MarkUsed(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-used-test")
	defer v.Logout()

	added, _ := v.AddEntry(model.NewEntry("Site", "u", "s"))
	if !added.LastUsedAt.IsZero() {
		t.Fatal("fresh entry should have zero last_used_at")
	}

	got, err := v.Entry(added.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastUsedAt.IsZero() {
		t.Fatal("reveal should record last_used_at")
	}
}

func TestUpdateSettings_RearmsAutoLock(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-settings-test")
	defer v.Logout()

	s, _ := v.Settings()
	s.ExpiryWindowDays = 30
	if err := v.UpdateSettings(*s); err != nil {
		t.Fatal(err)
	}
	got, _ := v.Settings()
	if got.ExpiryWindowDays != 30 {
		t.Fatal("settings change lost")
	}

	bad := *s
	bad.AutoLockMinutes = -1
	if err := v.UpdateSettings(bad); err == nil {
		t.Fatal("negative auto-lock must be rejected")
	}
}

func TestAutoLock_LocksVaultExactlyOnce(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-autolock-test")
	v.Flush()

	v.mu.Lock()
	v.session.SetTTL(20 * time.Millisecond)
	v.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for {
		st, err := v.Status()
		if err != nil {
			t.Fatal(err)
		}
		if st.Locked {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("vault never auto-locked")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := v.Entries(); !errors.Is(err, ErrLocked) {
		t.Fatal("entries must be unreadable after auto-lock")
	}
}

func TestExport_Format(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-export-test")
	defer v.Logout()

	v.AddEntry(model.NewEntry("Site", "u", "s"))

	bundle, err := v.Export()
	if err != nil {
		t.Fatal(err)
	}
	if len(bundle.Passwords) != 1 {
		t.Fatalf("expected 1 password, got %d", len(bundle.Passwords))
	}
	if bundle.UserHash != crypto.IdentityHash([]byte("pw-export-test")) {
		t.Fatal("userHash must be the identity hash")
	}
	if bundle.Version != model.SchemaVersion || bundle.ExportDate.IsZero() {
		t.Fatal("export metadata incomplete")
	}
}

type fakeAuthenticator struct {
	available bool
	handles   map[string]bool
	assertAs  string
}

func (f *fakeAuthenticator) IsAvailable() bool { return f.available }

func (f *fakeAuthenticator) Register(handle string) bool {
	if f.handles == nil {
		f.handles = map[string]bool{}
	}
	f.handles[handle] = true
	return true
}

func (f *fakeAuthenticator) Authenticate() (string, bool) {
	if f.assertAs != "" && f.handles[f.assertAs] {
		return f.assertAs, true
	}
	return "", false
}

func TestFallback_EnrollAndRetrieve(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-fallback-test")
	v.Flush()

	auth := &fakeAuthenticator{available: true}
	handle, err := v.EnrollFallback(auth)
	if err != nil {
		t.Fatal(err)
	}
	auth.assertAs = handle

	encoded, err := v.RetrieveFallback(auth)
	if err != nil {
		t.Fatal(err)
	}

	// The fallback path returns ciphertext only; opening it still takes
	// the master passphrase.
	blob, err := crypto.DecodeBlob(encoded)
	if err != nil {
		t.Fatal(err)
	}
	salt, _ := crypto.Salt(blob)
	key := crypto.DeriveKey([]byte("pw-fallback-test"), salt)
	if _, err := crypto.Open(key, blob); err != nil {
		t.Fatalf("fallback blob should open under the passphrase key: %v", err)
	}
	wrong := crypto.DeriveKey([]byte("some-other-pass"), salt)
	if _, err := crypto.Open(wrong, blob); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatal("fallback blob must not open under a different key")
	}
	v.Logout()
}

func TestFallback_RefreshedOnSave(t *testing.T) {
	v, _ := testVault(t)
	v.Signup("pw-refresh-test")
	v.Flush()

	auth := &fakeAuthenticator{available: true}
	handle, err := v.EnrollFallback(auth)
	if err != nil {
		t.Fatal(err)
	}
	auth.assertAs = handle

	before, _ := v.RetrieveFallback(auth)

	v.AddEntry(model.NewEntry("Site", "u", "s"))
	v.Flush()

	after, err := v.RetrieveFallback(auth)
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Fatal("fallback copy must be refreshed on save")
	}
	v.Logout()
}

func TestFallback_Failures(t *testing.T) {
	v, _ := testVault(t)

	if _, err := v.RetrieveFallback(&fakeAuthenticator{available: false}); !errors.Is(err, ErrBiometricUnavailable) {
		t.Fatalf("expected ErrBiometricUnavailable, got %v", err)
	}
	if _, err := v.RetrieveFallback(&fakeAuthenticator{available: true}); !errors.Is(err, ErrBiometricFailed) {
		t.Fatalf("expected ErrBiometricFailed, got %v", err)
	}
	if _, err := v.EnrollFallback(&fakeAuthenticator{available: true}); !errors.Is(err, ErrLocked) {
		t.Fatalf("enroll while locked: expected ErrLocked, got %v", err)
	}
}
