package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"credvault/internal/analyzer"
	"credvault/internal/codec"
	"credvault/internal/model"
	"credvault/internal/totp"
	"credvault/internal/vault"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "kind": kind})
}

// handleVaultError maps domain errors onto HTTP statuses. Wrong
// passphrase and tampered ciphertext share one uniform response.
func handleVaultError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vault.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, "authentication_failed", "invalid credentials")
	case errors.Is(err, vault.ErrNoSuchAccount):
		writeError(w, http.StatusNotFound, "no_such_account", "no account for this passphrase")
	case errors.Is(err, vault.ErrAccountExists):
		writeError(w, http.StatusConflict, "account_exists", "an account already exists for this passphrase")
	case errors.Is(err, vault.ErrAlreadyUnlocked):
		writeError(w, http.StatusConflict, "conflict", "a session is already active")
	case errors.Is(err, vault.ErrLocked):
		writeError(w, http.StatusUnauthorized, "locked", "vault is locked")
	case errors.Is(err, vault.ErrEmptyPassphrase):
		writeError(w, http.StatusBadRequest, "invalid_request", "passphrase required")
	case errors.Is(err, vault.ErrInvalidFieldKind):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, model.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "not_found", "entry not found")
	case errors.Is(err, codec.ErrMalformedVault):
		writeError(w, http.StatusInternalServerError, "malformed_vault", "vault data is malformed")
	case errors.Is(err, vault.ErrBiometricUnavailable):
		writeError(w, http.StatusServiceUnavailable, "biometric_unavailable", "biometric authenticator unavailable")
	case errors.Is(err, vault.ErrBiometricFailed):
		writeError(w, http.StatusUnauthorized, "biometric_failed", "biometric assertion failed; use the master passphrase")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

type passphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

// POST /auth/signup
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req passphraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON")
		return
	}
	token, err := s.vault.Signup(req.Passphrase)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// POST /auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimit.allow() {
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many login attempts, try again later")
		return
	}
	var req passphraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON")
		return
	}
	token, err := s.vault.Login(req.Passphrase)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// POST /auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.vault.Logout()
	writeJSON(w, http.StatusOK, map[string]string{"status": "locked"})
}

// GET /status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.vault.Status()
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /users — registry records with their low-entropy hints, for the
// account picker shown before login.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.vault.Users()
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GET /entries
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.vault.Entries()
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// POST /entries
func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var e model.CredentialEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON")
		return
	}
	if e.Title == "" || e.Secret == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "title and secret required")
		return
	}
	added, err := s.vault.AddEntry(e)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// GET /entries/{id}?reveal=1
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	reveal := r.URL.Query().Get("reveal") == "1"
	e, err := s.vault.Entry(chi.URLParam(r, "id"), reveal)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	if !reveal {
		e.Secret = ""
		e.TOTPSeed = ""
	}
	writeJSON(w, http.StatusOK, e)
}

// PUT /entries/{id}
func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var e model.CredentialEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON")
		return
	}
	e.ID = chi.URLParam(r, "id")
	updated, err := s.vault.UpdateEntry(e)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DELETE /entries/{id}
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.vault.DeleteEntry(chi.URLParam(r, "id")); err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /entries/{id}/totp
func (s *Server) handleEntryTOTP(w http.ResponseWriter, r *http.Request) {
	e, err := s.vault.Entry(chi.URLParam(r, "id"), false)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	if e.TOTPSeed == "" {
		writeError(w, http.StatusNotFound, "not_found", "entry has no TOTP seed")
		return
	}
	now := time.Now()
	code, err := totp.Code(e.TOTPSeed, now)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_seed", "stored TOTP seed is invalid")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":       code,
		"expires_in": int(totp.Remaining(now).Seconds()),
	})
}

// GET /categories
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.vault.Categories()
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// POST /categories
func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name required")
		return
	}
	cat, err := s.vault.AddCategory(req.Name, req.Color, req.Icon)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// DELETE /categories/{id}
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.vault.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.vault.Settings()
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PUT /settings
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON")
		return
	}
	if err := s.vault.UpdateSettings(settings); err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// GET /report — recomputed on demand, never persisted.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	entries, err := s.vault.Entries()
	if err != nil {
		handleVaultError(w, err)
		return
	}
	settings, err := s.vault.Settings()
	if err != nil {
		handleVaultError(w, err)
		return
	}

	oracle := s.oracle
	if !settings.BreachCheck || r.URL.Query().Get("breach") == "0" {
		oracle = nil
	}
	report := analyzer.New(settings.ExpiryWindowDays, oracle, s.logger).
		Analyze(r.Context(), entries)
	writeJSON(w, http.StatusOK, report)
}

// GET /export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.vault.Export()
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

// GET /audit
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := s.auditLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	entries, err := s.vault.Audit(limit)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// POST /fallback/enroll
func (s *Server) handleFallbackEnroll(w http.ResponseWriter, r *http.Request) {
	handle, err := s.vault.EnrollFallback(s.auth)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"handle": handle})
}

// POST /fallback/assert — public: runs the platform assertion and returns
// the still-encrypted blob. Decrypting it requires the master passphrase;
// a failed assertion means the caller falls back to passphrase login.
func (s *Server) handleFallbackAssert(w http.ResponseWriter, r *http.Request) {
	blob, err := s.vault.RetrieveFallback(s.auth)
	if err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"blob": blob})
}

// DELETE /fallback/{handle}
func (s *Server) handleFallbackRevoke(w http.ResponseWriter, r *http.Request) {
	if err := s.vault.RevokeFallback(chi.URLParam(r, "handle")); err != nil {
		handleVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
