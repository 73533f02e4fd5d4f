package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"
)

// identitySalt is a fixed application-wide salt for identity hashing.
// It must never change: the identity hash keys every stored vault blob.
var identitySalt = []byte("credvault.identity.v1")

// IdentityHash derives the one-way identity hash used to locate a user's
// vault blob. HKDF-SHA256 with a fixed salt is deterministic and
// collision-resistant; it is deliberately fast — the hash never protects
// secrets, it only names the blob. The slow KDF is reserved for the
// encryption key.
func IdentityHash(passphrase []byte) string {
	r := hkdf.New(sha256.New, passphrase, identitySalt, []byte("identity"))
	sum := make([]byte, 32)
	if _, err := io.ReadFull(r, sum); err != nil {
		// HKDF over SHA-256 cannot fail for a 32-byte read.
		panic(err)
	}
	return hex.EncodeToString(sum)
}
