package main

import (
	"fmt"
	"os"
	"syscall"
)

func cmdLogout() {
	resp, err := apiRequest("POST", "/auth/logout", nil)
	if err == nil {
		resp.Body.Close()
	}

	// Stop the background server too; a locked server holds no secrets but
	// there is no reason to keep it around.
	if pid, err := readPID(); err == nil {
		if p, err := os.FindProcess(pid); err == nil {
			p.Signal(syscall.SIGTERM)
		}
	}

	removeSessionToken()
	removePID()
	fmt.Println("Vault locked.")
}
