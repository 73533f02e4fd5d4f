package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const nonceLen = 16 // 128-bit random nonce

// ErrAuthenticationFailed is returned for any tag mismatch, truncation or
// malformed header. Wrong key and tampered ciphertext are deliberately
// indistinguishable to callers.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Seal encrypts plaintext with AES-256-GCM under a fresh random 16-byte
// nonce and prepends the per-vault salt. The blob layout is
// salt(32) || nonce(16) || ciphertext+tag.
func Seal(key, salt, plaintext []byte) ([]byte, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("seal: key must be %d bytes, got %d", KeyLen, len(key))
	}
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("seal: salt must be %d bytes, got %d", SaltLen, len(salt))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	blob := make([]byte, 0, SaltLen+nonceLen+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return blob, nil
}

// Salt extracts the per-vault salt from a sealed blob so the caller can
// re-derive the key before opening.
func Salt(blob []byte) ([]byte, error) {
	if len(blob) < SaltLen+nonceLen+1 {
		return nil, ErrAuthenticationFailed
	}
	return blob[:SaltLen], nil
}

// Open decrypts a blob produced by Seal. It fails closed: no plaintext is
// ever released unless the authentication tag verifies.
func Open(key, blob []byte) ([]byte, error) {
	if len(blob) < SaltLen+nonceLen+1 {
		return nil, ErrAuthenticationFailed
	}
	if len(key) != KeyLen {
		return nil, fmt.Errorf("open: key must be %d bytes, got %d", KeyLen, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	nonce := blob[SaltLen : SaltLen+nonceLen]
	ciphertext := blob[SaltLen+nonceLen:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// SealToBase64 seals and base64-encodes, the at-rest blob format.
func SealToBase64(key, salt, plaintext []byte) (string, error) {
	blob, err := Seal(key, salt, plaintext)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecodeBlob base64-decodes a stored blob. Malformed encoding is reported
// as an authentication failure, same as any other corrupted ciphertext.
func DecodeBlob(encoded string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return blob, nil
}
