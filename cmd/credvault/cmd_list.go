package main

import (
	"fmt"

	"github.com/fatih/color"

	"credvault/internal/model"
)

func cmdList() {
	resp, err := apiRequest("GET", "/entries", nil)
	if err != nil {
		fatal("request failed: %v", err)
	}

	var entries []model.CredentialEntry
	if err := apiResult(resp, &entries); err != nil {
		fatal("%v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No credentials stored.")
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintfFunc()
	for _, e := range entries {
		line := fmt.Sprintf("%-30s %-25s %s", bold(e.Title), e.Username, dim("%s", e.ID))
		if e.Compromised {
			line += " " + color.RedString("[compromised]")
		}
		fmt.Println(line)
	}
}
