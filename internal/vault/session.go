package vault

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"sync"
	"time"
)

// Session holds the authenticated identity, the in-memory passphrase used
// to re-derive keys on save, and the idle-lock timer. It exists only
// between a successful login and logout/auto-lock and is never persisted.
type Session struct {
	mu         sync.Mutex
	token      string
	identity   string
	passphrase []byte
	startedAt  time.Time
	lastActive time.Time
	timer      *time.Timer
	lockFn     func()
	ttl        time.Duration
}

// NewSession creates a session for the given identity. ttl of 0 means the
// session never auto-locks. lockFn runs exactly once if the idle timer
// fires.
func NewSession(identity string, passphrase []byte, ttl time.Duration, lockFn func()) (*Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		token:      hex.EncodeToString(tokenBytes),
		identity:   identity,
		startedAt:  now,
		lastActive: now,
		lockFn:     lockFn,
		ttl:        ttl,
	}
	// Copy so the caller can't mutate or observe zeroing.
	s.passphrase = make([]byte, len(passphrase))
	copy(s.passphrase, passphrase)
	lockMemory(s.passphrase)
	disableCoreDumps()

	if ttl > 0 {
		s.timer = time.AfterFunc(ttl, s.autoLock)
	}
	return s, nil
}

// Token returns the session token string.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Identity returns the identity hash this session authenticated as.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Passphrase returns a copy of the master passphrase bytes, or nil after
// the session has been destroyed.
func (s *Session) Passphrase() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passphrase == nil {
		return nil
	}
	cp := make([]byte, len(s.passphrase))
	copy(cp, s.passphrase)
	return cp
}

// ValidateToken checks a token using constant-time comparison.
func (s *Session) ValidateToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.token), []byte(token)) == 1
}

// Touch records activity and rearms the idle timer. Rearming is atomic
// with respect to a concurrently firing timeout: if the timer already
// fired, Touch does not resurrect the session.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.lastActive = time.Now()
	if s.timer != nil {
		s.timer.Reset(s.ttl)
	}
}

// SetTTL replaces the idle timeout. 0 disables auto-lock.
func (s *Session) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.ttl = ttl
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if ttl > 0 {
		s.timer = time.AfterFunc(ttl, s.autoLock)
	}
}

// Destroy zeroes the passphrase and invalidates the session. Safe to call
// more than once; the lock callback never runs from Destroy.
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zeroPassphrase()
	s.token = ""
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) autoLock() {
	s.mu.Lock()
	if s.token == "" {
		// Lost the race against Destroy; nothing left to lock.
		s.mu.Unlock()
		return
	}
	s.zeroPassphrase()
	s.token = ""
	s.timer = nil
	lockFn := s.lockFn
	s.mu.Unlock()

	if lockFn != nil {
		lockFn()
	}
}

func (s *Session) zeroPassphrase() {
	unlockMemory(s.passphrase)
	for i := range s.passphrase {
		s.passphrase[i] = 0
	}
	s.passphrase = nil
}
