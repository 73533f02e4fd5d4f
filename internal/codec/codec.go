// Package codec serializes vault snapshots to their canonical byte
// encoding: versioned JSON. The version field lets older snapshots stay
// decodable as optional fields are added.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"credvault/internal/model"
)

// ErrMalformedVault indicates an authenticated plaintext that does not
// decode as a vault snapshot. That points at a schema bug, not at
// tampering, and is fatal to the operation rather than retried.
var ErrMalformedVault = errors.New("malformed vault")

// Encode serializes a snapshot.
func Encode(s *model.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrMalformedVault)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVault, err)
	}
	return data, nil
}

// Decode parses a snapshot previously produced by Encode.
func Decode(data []byte) (*model.Snapshot, error) {
	var s model.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVault, err)
	}
	if s.Version < 1 || s.Version > model.SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedVault, s.Version)
	}
	if s.Entries == nil {
		s.Entries = []model.CredentialEntry{}
	}
	return &s, nil
}
