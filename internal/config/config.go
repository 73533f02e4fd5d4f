// Package config resolves runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the process-level configuration. Per-vault preferences (auto
// lock, expiry window) live inside each encrypted snapshot; these are the
// host-side knobs.
type Config struct {
	// DataDir holds the shared sqlite database.
	DataDir string
	// ListenAddr is the local API address.
	ListenAddr string
	// ServerURL is what the CLI dials.
	ServerURL string
	// BreachRangeURL overrides the k-anonymity range endpoint ("" means
	// the public service; "off" disables breach checks entirely).
	BreachRangeURL string
	// AuditLimit caps audit log reads.
	AuditLimit int
	// LogLevel is one of debug, info, warn, error.
	LogLevel slog.Level
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	// No .env file is the normal case.
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:        envOr("CREDVAULT_DIR", defaultDataDir()),
		ListenAddr:     envOr("CREDVAULT_LISTEN", "127.0.0.1:7310"),
		ServerURL:      envOr("CREDVAULT_SERVER", "http://127.0.0.1:7310"),
		BreachRangeURL: os.Getenv("CREDVAULT_BREACH_URL"),
		AuditLimit:     envIntOr("CREDVAULT_AUDIT_LIMIT", 20),
		LogLevel:       parseLevel(envOr("CREDVAULT_LOG_LEVEL", "info")),
	}
	return cfg
}

// DBPath returns the sqlite database path inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "credvault.db")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".credvault"
	}
	return filepath.Join(home, ".credvault")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
