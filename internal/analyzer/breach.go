package analyzer

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrBreachCheckUnavailable marks a network or service failure. Callers
// treat it as "unknown", never as a report failure.
var ErrBreachCheckUnavailable = errors.New("breach check unavailable")

// Oracle answers whether a secret appears in a known breach corpus.
type Oracle interface {
	IsCompromised(ctx context.Context, secret string) (bool, error)
}

// DefaultRangeURL is the public k-anonymity range endpoint.
const DefaultRangeURL = "https://api.pwnedpasswords.com/range"

// RangeClient implements the k-anonymity range-query protocol: only the
// first 5 hex characters of the secret's SHA-1 digest leave the process;
// the matching is done locally against the returned suffix list. SHA-1 is
// what the protocol requires, not a local hashing choice.
type RangeClient struct {
	baseURL string
	client  *http.Client
}

// NewRangeClient creates a breach oracle against the given range
// endpoint, or the public one when baseURL is empty.
func NewRangeClient(baseURL string) *RangeClient {
	if baseURL == "" {
		baseURL = DefaultRangeURL
	}
	return &RangeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// IsCompromised hashes the secret, sends the 5-character prefix and scans
// the response for its own suffix. The full hash and the plaintext never
// leave the process.
func (c *RangeClient) IsCompromised(ctx context.Context, secret string) (bool, error) {
	sum := sha1.Sum([]byte(secret))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBreachCheckUnavailable, err)
	}
	req.Header.Set("Add-Padding", "true")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBreachCheckUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: HTTP %d", ErrBreachCheckUnavailable, resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		candidate, count, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(candidate, suffix) && strings.TrimSpace(count) != "0" {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrBreachCheckUnavailable, err)
	}
	return false, nil
}
