package main

import (
	"fmt"

	"credvault/internal/vault"
)

func cmdStatus() {
	resp, err := apiRequest("GET", "/status", nil)
	if err != nil {
		fmt.Println("Vault is locked (server not running).")
		return
	}

	var status vault.Status
	if err := apiResult(resp, &status); err != nil {
		fatal("%v", err)
	}

	if status.Locked {
		fmt.Println("Status:    locked")
	} else {
		fmt.Println("Status:    unlocked")
		fmt.Printf("Entries:   %d\n", status.Entries)
	}
	fmt.Printf("Accounts:  %d\n", status.Users)
}
