package crypto

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is fixed well above the current OWASP floor for
	// PBKDF2-SHA256 so offline guessing stays expensive.
	Iterations = 310_000

	KeyLen  = 32 // 256-bit
	SaltLen = 32
)

// DeriveKey derives a 256-bit vault key from the master passphrase and a
// per-vault random salt using PBKDF2-HMAC-SHA256. Deterministic: the same
// passphrase and salt always yield the same key.
func DeriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, Iterations, KeyLen, sha256.New)
}

// GenerateSalt returns 32 bytes of cryptographically secure random data.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Zero overwrites key material in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
