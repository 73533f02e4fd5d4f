// Package totp generates RFC 6238 one-time codes from the base32 seeds
// stored on credential entries.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Step   = 30 * time.Second
	Digits = 6
)

var ErrInvalidSeed = errors.New("invalid TOTP seed")

// Code returns the 6-digit code for the seed at the given time.
func Code(seed string, when time.Time) (string, error) {
	secret, err := decodeSeed(seed)
	if err != nil {
		return "", err
	}
	defer zero(secret)

	counter := uint64(when.Unix() / int64(Step/time.Second))
	return computeCode(secret, counter), nil
}

// Remaining returns how long the code at the given time stays valid.
func Remaining(when time.Time) time.Duration {
	step := int64(Step / time.Second)
	return time.Duration(step-when.Unix()%step) * time.Second
}

func computeCode(secret []byte, counter uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(sha1.New, secret)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0F
	trunc := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7FFFFFFF
	code := trunc % 1000000
	return fmt.Sprintf("%0*d", Digits, code)
}

func decodeSeed(seed string) ([]byte, error) {
	seed = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(seed), " ", ""))
	decoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	secret, err := decoder.DecodeString(strings.TrimRight(seed, "="))
	if err != nil || len(secret) == 0 {
		return nil, ErrInvalidSeed
	}
	return secret, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
