package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func testSalt() []byte {
	return []byte("saltsaltsaltsaltsaltsaltsaltsalt")
}

func TestDeriveKey_Deterministic(t *testing.T) {
	k1 := DeriveKey([]byte("hunter2"), testSalt())
	k2 := DeriveKey([]byte("hunter2"), testSalt())

	if !bytes.Equal(k1, k2) {
		t.Fatal("same inputs should produce same key")
	}
	if len(k1) != 32 {
		t.Fatalf("expected 32-byte key, got %d", len(k1))
	}
}

func TestDeriveKey_DifferentPassphrase(t *testing.T) {
	k1 := DeriveKey([]byte("passphrase1"), testSalt())
	k2 := DeriveKey([]byte("passphrase2"), testSalt())

	if bytes.Equal(k1, k2) {
		t.Fatal("different passphrases should produce different keys")
	}
}

func TestDeriveKey_DifferentSalt(t *testing.T) {
	other := bytes.Repeat([]byte{0x42}, SaltLen)

	k1 := DeriveKey([]byte("hunter2"), testSalt())
	k2 := DeriveKey([]byte("hunter2"), other)

	if bytes.Equal(k1, k2) {
		t.Fatal("different salts should produce different keys")
	}
}

func TestGenerateSalt_Length(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}
	if len(salt) != SaltLen {
		t.Fatalf("expected %d-byte salt, got %d", SaltLen, len(salt))
	}
}

func TestGenerateSalt_Unique(t *testing.T) {
	s1, _ := GenerateSalt()
	s2, _ := GenerateSalt()
	if bytes.Equal(s1, s2) {
		t.Fatal("two generated salts should differ")
	}
}

func TestSealOpen_Roundtrip(t *testing.T) {
	key := DeriveKey([]byte("hunter2"), testSalt())
	plaintext := []byte(`{"entries":[]}`)

	blob, err := Seal(key, testSalt(), plaintext)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Open(key, blob)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("roundtrip mismatch: got %q", got)
	}
}

func TestSeal_BlobLayout(t *testing.T) {
	key := DeriveKey([]byte("hunter2"), testSalt())

	blob, err := Seal(key, testSalt(), []byte("p"))
	if err != nil {
		t.Fatal(err)
	}

	// salt(32) || nonce(16) || ciphertext(1) + tag(16)
	if len(blob) != SaltLen+16+1+16 {
		t.Fatalf("unexpected blob length %d", len(blob))
	}
	salt, err := Salt(blob)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(salt, testSalt()) {
		t.Fatal("salt prefix not preserved")
	}
}

func TestSeal_FreshNonce(t *testing.T) {
	key := DeriveKey([]byte("hunter2"), testSalt())

	b1, _ := Seal(key, testSalt(), []byte("same plaintext"))
	b2, _ := Seal(key, testSalt(), []byte("same plaintext"))

	if bytes.Equal(b1[SaltLen:SaltLen+16], b2[SaltLen:SaltLen+16]) {
		t.Fatal("nonce must be fresh on every seal")
	}
	if bytes.Equal(b1, b2) {
		t.Fatal("two seals of the same plaintext must not be identical")
	}
}

func TestOpen_TamperDetection(t *testing.T) {
	key := DeriveKey([]byte("hunter2"), testSalt())
	blob, err := Seal(key, testSalt(), []byte("attack at dawn"))
	if err != nil {
		t.Fatal(err)
	}

	// Flipping any single bit anywhere past the salt must fail closed.
	for i := SaltLen; i < len(blob); i++ {
		mutated := bytes.Clone(blob)
		mutated[i] ^= 0x01
		if _, err := Open(key, mutated); !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("bit flip at %d: expected ErrAuthenticationFailed, got %v", i, err)
		}
	}
}

func TestOpen_WrongKey(t *testing.T) {
	key := DeriveKey([]byte("hunter2"), testSalt())
	wrong := DeriveKey([]byte("hunter3"), testSalt())

	blob, _ := Seal(key, testSalt(), []byte("secret"))
	if _, err := Open(wrong, blob); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestOpen_Truncated(t *testing.T) {
	key := DeriveKey([]byte("hunter2"), testSalt())
	blob, _ := Seal(key, testSalt(), []byte("secret"))

	for _, n := range []int{0, 1, SaltLen, SaltLen + 16} {
		if _, err := Open(key, blob[:n]); !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("truncated to %d: expected ErrAuthenticationFailed, got %v", n, err)
		}
	}
}

func TestDecodeBlob_Malformed(t *testing.T) {
	if _, err := DecodeBlob("not base64!!!"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestIdentityHash_Deterministic(t *testing.T) {
	h1 := IdentityHash([]byte("Ajaykanna@123"))
	h2 := IdentityHash([]byte("Ajaykanna@123"))
	if h1 != h2 {
		t.Fatal("identity hash must be deterministic")
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestIdentityHash_Distinct(t *testing.T) {
	if IdentityHash([]byte("alpha")) == IdentityHash([]byte("beta")) {
		t.Fatal("different passphrases must map to different identities")
	}
}
