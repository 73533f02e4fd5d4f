package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"credvault/internal/analyzer"
	"credvault/internal/api"
	"credvault/internal/store"
	"credvault/internal/vault"
)

var sessionFromStdin bool

func init() {
	for _, arg := range os.Args {
		if arg == "--session-stdin" {
			sessionFromStdin = true
		}
	}
}

func cmdServe() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		fatal("create data dir: %v", err)
	}
	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fatal("open database: %v", err)
	}
	defer db.Close()

	v := vault.New(db, logger)
	defer v.Logout()

	// The signup/login commands spawn this process and pipe the mode and
	// passphrase over stdin so the secret never appears in argv.
	var token string
	if sessionFromStdin {
		scanner := bufio.NewScanner(os.Stdin)
		var mode, pw string
		if scanner.Scan() {
			mode = strings.TrimSpace(scanner.Text())
		}
		if scanner.Scan() {
			pw = scanner.Text()
		}
		if pw == "" {
			fatal("failed to read passphrase from stdin")
		}
		switch mode {
		case "signup":
			token, err = v.Signup(pw)
		default:
			token, err = v.Login(pw)
		}
		if err != nil {
			fatal("%v", err)
		}
	}

	opts := []api.Option{api.WithAuditLimit(cfg.AuditLimit)}
	if cfg.BreachRangeURL != "off" {
		opts = append(opts, api.WithOracle(analyzer.NewRangeClient(cfg.BreachRangeURL)))
	}
	srv := api.New(v, cfg.ListenAddr, logger, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Write the session token only once the server is about to bind;
	// writing earlier races a stale server holding the old token.
	if token != "" {
		if err := writeSessionToken(token); err != nil {
			fatal("write session: %v", err)
		}
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", "error", err)
	}
	removeSessionToken()
	removePID()
}
