package vault

import (
	"errors"

	"credvault/internal/crypto"
)

var (
	ErrLocked          = errors.New("vault is locked")
	ErrAlreadyUnlocked = errors.New("vault is already unlocked")
	ErrNoSuchAccount   = errors.New("no account for this passphrase")
	ErrAccountExists   = errors.New("an account already exists for this passphrase")

	// ErrAuthenticationFailed covers both a wrong passphrase and a
	// tampered blob; callers must not be able to tell them apart.
	ErrAuthenticationFailed = crypto.ErrAuthenticationFailed

	ErrBiometricUnavailable = errors.New("biometric authenticator unavailable")
	ErrBiometricFailed      = errors.New("biometric assertion failed")
)
