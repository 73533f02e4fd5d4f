package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credvault/internal/model"
)

func TestStrength_Heuristic(t *testing.T) {
	tests := []struct {
		secret string
		want   int
	}{
		{"", 0},
		{"abc", 0},                 // too short, nothing else
		{"abcdefgh", 25},           // length >= 8
		{"abcdefghijkl", 50},       // length >= 12
		{"Abcdefgh", 45},           // length + mixed case
		{"abcdefg1", 40},           // length + digit
		{"abcdefg!", 40},           // length + symbol
		{"Abcdefg1!", 75},          // length + case + digit + symbol
		{"Abcdefghijk1!", 100},     // everything
		{"A1!", 30},                // digit + symbol only; no lowercase, so not mixed case
		{"Tr0ub4dor&3xxx", 100},    // capped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Strength(tt.secret), "secret %q", tt.secret)
	}
}

func TestStrength_Idempotent(t *testing.T) {
	assert.Equal(t, Strength("Abcdefg1!"), Strength("Abcdefg1!"))
}

func TestStrength_MonotonicAcrossThresholds(t *testing.T) {
	assert.Less(t, Strength("abcdefgh"), Strength("Abcdefg1!"))
	assert.LessOrEqual(t, Strength("abcdefgh"), Strength("abcdefghijkl"))
	assert.LessOrEqual(t, Strength("abc"), Strength("abcdefgh"))
}

func entry(secret string) model.CredentialEntry {
	e := model.NewEntry("t", "u", secret)
	return e
}

func TestAnalyze_ReuseCountsAllMembers(t *testing.T) {
	a := New(0, nil, nil)
	report := a.Analyze(context.Background(), []model.CredentialEntry{
		entry("x"), entry("x"), entry("y"),
	})

	// Both members of the "x" group are reported, not just the extra one.
	assert.Equal(t, 2, report.Reused)
	assert.Equal(t, 3, report.Total)
}

func TestAnalyze_Expiry(t *testing.T) {
	a := New(90, nil, nil)
	now := time.Now().UTC()

	explicitPast := entry("Longenough1!x")
	explicitPast.ExpiresAt = now.Add(-time.Hour)

	explicitFuture := entry("Longenough1!x")
	explicitFuture.ExpiresAt = now.Add(time.Hour)

	implicitOld := entry("Longenough1!x")
	implicitOld.CreatedAt = now.AddDate(0, 0, -91)

	implicitFresh := entry("Longenough1!x")

	report := a.Analyze(context.Background(), []model.CredentialEntry{
		explicitPast, explicitFuture, implicitOld, implicitFresh,
	})

	require.Len(t, report.Findings, 4)
	assert.True(t, report.Findings[0].Expired, "explicit past expiry")
	assert.False(t, report.Findings[1].Expired, "explicit future expiry")
	assert.True(t, report.Findings[2].Expired, "older than rotation window")
	assert.False(t, report.Findings[3].Expired, "fresh, no explicit expiry")
	assert.Equal(t, 2, report.Expired)
}

func TestAnalyze_EmptyVaultScores100(t *testing.T) {
	a := New(0, nil, nil)
	report := a.Analyze(context.Background(), nil)
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, 0, report.Total)
}

func TestAnalyze_WorstCaseScoresZero(t *testing.T) {
	a := New(90, nil, nil)
	now := time.Now().UTC()

	// Every entry weak, reused, expired and compromised at once: the
	// four penalties sum to 100 and the clamp floors the score at 0.
	var entries []model.CredentialEntry
	for i := 0; i < 3; i++ {
		e := entry("abc")
		e.CreatedAt = now.AddDate(0, 0, -200)
		e.Compromised = true
		entries = append(entries, e)
	}

	report := a.Analyze(context.Background(), entries)
	assert.Equal(t, 3, report.Weak)
	assert.Equal(t, 3, report.Reused)
	assert.Equal(t, 3, report.Expired)
	assert.Equal(t, 3, report.Compromised)
	assert.Equal(t, 0, report.Score)
}

func TestAnalyze_AggregateFormula(t *testing.T) {
	a := New(90, nil, nil)

	// Two strong unique fresh entries, one weak: 100 - 30*(1/3) = 90.
	strong1 := entry("Str0ng&Unique1")
	strong2 := entry("An0ther$trongOne")
	weak := entry("abc")

	report := a.Analyze(context.Background(), []model.CredentialEntry{strong1, strong2, weak})
	assert.Equal(t, 1, report.Weak)
	assert.Equal(t, 90, report.Score)
}

type stubOracle struct {
	compromised map[string]bool
	err         error
	calls       int
}

func (s *stubOracle) IsCompromised(_ context.Context, secret string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.compromised[secret], nil
}

func TestAnalyze_BreachOracle(t *testing.T) {
	oracle := &stubOracle{compromised: map[string]bool{"pwned-secret": true}}
	a := New(0, oracle, nil)

	report := a.Analyze(context.Background(), []model.CredentialEntry{
		entry("pwned-secret"), entry("Cl3an&Secret99"),
	})
	assert.Equal(t, 1, report.Compromised)
	assert.True(t, report.Findings[0].Compromised)
	assert.False(t, report.Findings[1].Compromised)
}

func TestAnalyze_BreachFailureDegradesToUnknown(t *testing.T) {
	oracle := &stubOracle{err: ErrBreachCheckUnavailable}
	a := New(0, oracle, nil)

	report := a.Analyze(context.Background(), []model.CredentialEntry{entry("Wh4tever&Pass")})
	assert.Equal(t, 0, report.Compromised, "oracle failure must degrade to not-compromised")
	assert.Positive(t, oracle.calls)
}

func TestAnalyze_CompromisedFlagWithoutOracle(t *testing.T) {
	a := New(0, nil, nil)
	e := entry("S0mething&Fine1")
	e.Compromised = true

	report := a.Analyze(context.Background(), []model.CredentialEntry{e})
	assert.Equal(t, 1, report.Compromised)
}

func TestAnalyze_ErrBreachCheckUnavailableIsSentinel(t *testing.T) {
	err := ErrBreachCheckUnavailable
	assert.True(t, errors.Is(err, ErrBreachCheckUnavailable))
}
