package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"credvault/internal/analyzer"
	"credvault/internal/vault"
)

// rateLimiter tracks attempts within a time window.
type rateLimiter struct {
	mu       sync.Mutex
	attempts []time.Time
	max      int
	window   time.Duration
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{max: max, window: window}
}

// allow returns true if the request is within the rate limit.
func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	valid := rl.attempts[:0]
	for _, t := range rl.attempts {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	rl.attempts = valid

	if len(rl.attempts) >= rl.max {
		return false
	}
	rl.attempts = append(rl.attempts, now)
	return true
}

// Server is the localhost HTTP control surface over one vault. It is the
// boundary the presentation layer talks to; nothing here holds vault
// state of its own.
type Server struct {
	vault      *vault.Vault
	oracle     analyzer.Oracle
	auth       vault.Authenticator
	logger     *slog.Logger
	server     *http.Server
	loginLimit *rateLimiter
	auditLimit int
}

// Option tweaks an optional Server collaborator.
type Option func(*Server)

// WithOracle wires a breach oracle into security reports.
func WithOracle(o analyzer.Oracle) Option {
	return func(s *Server) { s.oracle = o }
}

// WithAuthenticator wires a platform authenticator for the biometric
// fallback endpoints.
func WithAuthenticator(a vault.Authenticator) Option {
	return func(s *Server) { s.auth = a }
}

// WithAuditLimit caps audit log reads.
func WithAuditLimit(n int) Option {
	return func(s *Server) { s.auditLimit = n }
}

// New creates an API server for the given vault.
func New(v *vault.Vault, addr string, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		vault:      v,
		logger:     logger,
		loginLimit: newRateLimiter(5, time.Minute),
		auditLimit: 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(securityHeaders)
	r.Use(bodySize)

	// Public: no session exists yet on these paths.
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/fallback/assert", s.handleFallbackAssert)
	r.Get("/status", s.handleStatus)
	r.Get("/users", s.handleUsers)

	// Everything else requires the session bearer token.
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Post("/auth/logout", s.handleLogout)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleAddEntry)
			r.Get("/{id}", s.handleGetEntry)
			r.Put("/{id}", s.handleUpdateEntry)
			r.Delete("/{id}", s.handleDeleteEntry)
			r.Get("/{id}/totp", s.handleEntryTOTP)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleAddCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
		r.Get("/report", s.handleReport)
		r.Get("/export", s.handleExport)
		r.Get("/audit", s.handleAudit)

		r.Post("/fallback/enroll", s.handleFallbackEnroll)
		r.Delete("/fallback/{handle}", s.handleFallbackRevoke)
	})

	return r
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully and locks the vault.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(shutdownCtx)
	s.vault.Logout()
	return err
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
