// Package analyzer scores and flags credential entries: strength, reuse,
// expiry and breach exposure. It is a pure function of the entry
// collection; the only side effect is the optional breach lookup.
package analyzer

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"credvault/internal/model"
)

const (
	// WeakThreshold is the strength score below which an entry counts
	// as weak.
	WeakThreshold = 50

	// DefaultExpiryWindowDays applies when an entry carries no explicit
	// expiry: a secret older than this is due for rotation.
	DefaultExpiryWindowDays = 90

	symbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Strength scores a secret 0-100 with an additive heuristic:
// +25 for length >= 8, +25 more for length >= 12, +20 for mixed case,
// +15 for a digit, +15 for a symbol. Deterministic, capped at 100.
func Strength(secret string) int {
	score := 0
	if len(secret) >= 8 {
		score += 25
	}
	if len(secret) >= 12 {
		score += 25
	}
	if strings.ToLower(secret) != secret && strings.ToUpper(secret) != secret {
		score += 20
	}
	if strings.ContainsAny(secret, "0123456789") {
		score += 15
	}
	if strings.ContainsAny(secret, symbols) {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Finding is the per-entry analysis result.
type Finding struct {
	EntryID     string `json:"entry_id"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	Weak        bool   `json:"weak"`
	Reused      bool   `json:"reused"`
	Expired     bool   `json:"expired"`
	Compromised bool   `json:"compromised"`
}

// Report aggregates findings over one vault. It is derived state,
// recomputed on demand and never persisted as authoritative.
type Report struct {
	Total       int       `json:"total"`
	Weak        int       `json:"weak"`
	Reused      int       `json:"reused"`
	Expired     int       `json:"expired"`
	Compromised int       `json:"compromised"`
	Score       int       `json:"score"`
	GeneratedAt time.Time `json:"generated_at"`
	Findings    []Finding `json:"findings"`
}

// Analyzer holds the tunables. The zero value is not useful; use New.
type Analyzer struct {
	expiryWindowDays int
	oracle           Oracle
	logger           *slog.Logger
}

// New creates an analyzer. oracle may be nil, in which case only the
// per-entry compromised flag feeds the breach count. expiryWindowDays of
// 0 selects the default window.
func New(expiryWindowDays int, oracle Oracle, logger *slog.Logger) *Analyzer {
	if expiryWindowDays <= 0 {
		expiryWindowDays = DefaultExpiryWindowDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{expiryWindowDays: expiryWindowDays, oracle: oracle, logger: logger}
}

// Analyze produces the security report for an entry collection. Breach
// lookups that fail degrade to "not compromised" — the oracle is a
// best-effort signal, never a reason to fail the report.
func (a *Analyzer) Analyze(ctx context.Context, entries []model.CredentialEntry) *Report {
	now := time.Now().UTC()
	report := &Report{
		Total:       len(entries),
		GeneratedAt: now,
		Findings:    make([]Finding, 0, len(entries)),
	}

	// Group by exact secret; every member of a >1 group is reused.
	bySecret := make(map[string]int, len(entries))
	for _, e := range entries {
		bySecret[e.Secret]++
	}

	for _, e := range entries {
		f := Finding{
			EntryID: e.ID,
			Title:   e.Title,
			Score:   Strength(e.Secret),
			Reused:  bySecret[e.Secret] > 1,
			Expired: a.expired(e, now),
		}
		f.Weak = f.Score < WeakThreshold
		f.Compromised = e.Compromised || a.breached(ctx, e.Secret)

		if f.Weak {
			report.Weak++
		}
		if f.Reused {
			report.Reused++
		}
		if f.Expired {
			report.Expired++
		}
		if f.Compromised {
			report.Compromised++
		}
		report.Findings = append(report.Findings, f)
	}

	report.Score = aggregateScore(report)
	return report
}

// expired reports whether the entry carries an explicit expiry in the
// past, or — with no explicit expiry — is older than the rotation window.
func (a *Analyzer) expired(e model.CredentialEntry, now time.Time) bool {
	if !e.ExpiresAt.IsZero() {
		return e.ExpiresAt.Before(now)
	}
	return now.After(e.CreatedAt.AddDate(0, 0, a.expiryWindowDays))
}

func (a *Analyzer) breached(ctx context.Context, secret string) bool {
	if a.oracle == nil {
		return false
	}
	compromised, err := a.oracle.IsCompromised(ctx, secret)
	if err != nil {
		// Unknown, not compromised.
		a.logger.Warn("breach check unavailable", "err", err)
		return false
	}
	return compromised
}

// aggregateScore maps fraction-weighted penalties onto [0,100]. An empty
// vault scores 100.
func aggregateScore(r *Report) int {
	if r.Total == 0 {
		return 100
	}
	total := float64(r.Total)
	score := 100 -
		30*float64(r.Weak)/total -
		25*float64(r.Reused)/total -
		20*float64(r.Expired)/total -
		25*float64(r.Compromised)/total
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}
