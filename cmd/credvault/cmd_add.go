package main

import (
	"fmt"
	"os"

	"credvault/internal/model"
)

func cmdAdd() {
	if len(os.Args) < 3 {
		fatal("usage: credvault add <title>\n  example: credvault add Gmail")
	}
	title := os.Args[2]

	username := promptLine("Username: ")
	secret, err := promptPassword("Password: ")
	if err != nil {
		fatal("reading password: %v", err)
	}
	if secret == "" {
		fatal("password must not be empty")
	}
	url := promptLine("URL (optional): ")

	entry := model.CredentialEntry{
		Title:    title,
		Username: username,
		Secret:   secret,
		URL:      url,
	}
	resp, err := apiRequest("POST", "/entries", entry)
	if err != nil {
		fatal("request failed: %v", err)
	}

	var created model.CredentialEntry
	if err := apiResult(resp, &created); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Added %q (%s)\n", created.Title, created.ID)
}
