package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"
)

func cmdLogin() {
	// Probe the port first — catches stale servers even if the PID file is gone.
	if portHasVault() {
		if vaultUnlocked() {
			fmt.Println("Vault is already unlocked (server running).")
			return
		}
		// Server running but vault auto-locked: log in over the API.
		pw, err := promptPassword("Master passphrase: ")
		if err != nil {
			fatal("reading passphrase: %v", err)
		}
		resp, err := apiRequest("POST", "/auth/login", map[string]string{"passphrase": pw})
		if err != nil {
			fatal("login request: %v", err)
		}
		var result struct {
			Token string `json:"token"`
		}
		if err := apiResult(resp, &result); err != nil {
			fatal("login failed: %s", err)
		}
		if err := writeSessionToken(result.Token); err != nil {
			fatal("write session: %v", err)
		}
		fmt.Println("Vault unlocked. Server running on", cfg.ServerURL)
		return
	}

	// Nothing on the port — clean up any stale PID file.
	removePID()

	pw, err := promptPassword("Master passphrase: ")
	if err != nil {
		fatal("reading passphrase: %v", err)
	}
	spawnServer("login", pw)
	fmt.Println("Vault unlocked. Server running on", cfg.ServerURL)
}

// spawnServer starts a background serve process and pipes the mode and
// passphrase over stdin. It blocks until the server reports unlocked.
func spawnServer(mode, passphrase string) {
	exe, err := os.Executable()
	if err != nil {
		fatal("finding executable: %v", err)
	}

	cmd := exec.Command(exe, "serve", "--session-stdin")
	cmd.Env = append(os.Environ(), fmt.Sprintf("CREDVAULT_DIR=%s", cfg.DataDir))

	stdin, err := cmd.StdinPipe()
	if err != nil {
		fatal("creating stdin pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		fatal("starting server: %v", err)
	}
	fmt.Fprintf(stdin, "%s\n%s\n", mode, passphrase)
	stdin.Close()

	writePID(cmd.Process.Pid)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			fatal("server did not come up; run 'credvault serve' in the foreground to see why")
		default:
			if vaultUnlocked() {
				return
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// portHasVault probes the server address with GET /status.
func portHasVault() bool {
	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(cfg.ServerURL + "/status")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func vaultUnlocked() bool {
	resp, err := apiRequest("GET", "/status", nil)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	var status struct {
		Locked bool `json:"locked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false
	}
	return !status.Locked
}
