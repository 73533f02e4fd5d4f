package main

import (
	"fmt"
	"os"

	"credvault/internal/model"
)

func cmdUpdate() {
	if len(os.Args) < 3 {
		fatal("usage: credvault update <id>")
	}
	id := os.Args[2]

	resp, err := apiRequest("GET", "/entries/"+id+"?reveal=1", nil)
	if err != nil {
		fatal("request failed: %v", err)
	}
	var e model.CredentialEntry
	if err := apiResult(resp, &e); err != nil {
		fatal("%v", err)
	}

	secret, err := promptPassword("New password: ")
	if err != nil {
		fatal("reading password: %v", err)
	}
	if secret == "" {
		fatal("password must not be empty")
	}
	e.Secret = secret

	resp, err = apiRequest("PUT", "/entries/"+id, e)
	if err != nil {
		fatal("request failed: %v", err)
	}
	if err := apiResult(resp, &e); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Updated %q\n", e.Title)
}
