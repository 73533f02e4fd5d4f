package main

import (
	"fmt"
)

func cmdSignup() {
	pw, err := promptPassword("Master passphrase: ")
	if err != nil {
		fatal("reading passphrase: %v", err)
	}
	if len(pw) < 8 {
		fatal("passphrase must be at least 8 characters")
	}

	confirm, err := promptPassword("Confirm passphrase: ")
	if err != nil {
		fatal("reading confirmation: %v", err)
	}
	if pw != confirm {
		fatal("passphrases do not match")
	}

	if portHasVault() {
		// Server already running: sign up against it directly.
		resp, err := apiRequest("POST", "/auth/signup", map[string]string{"passphrase": pw})
		if err != nil {
			fatal("signup request: %v", err)
		}
		var result struct {
			Token string `json:"token"`
		}
		if err := apiResult(resp, &result); err != nil {
			fatal("signup failed: %s", err)
		}
		if err := writeSessionToken(result.Token); err != nil {
			fatal("write session: %v", err)
		}
	} else {
		spawnServer("signup", pw)
	}

	fmt.Println("Vault created and unlocked.")
	fmt.Println()
	fmt.Println("Your passphrase is the only way in. There is no recovery.")
	fmt.Printf("Database: %s\n", cfg.DBPath())
}
