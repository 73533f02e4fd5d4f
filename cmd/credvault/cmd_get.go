package main

import (
	"fmt"
	"os"

	"credvault/internal/model"
)

func cmdGet() {
	if len(os.Args) < 3 {
		fatal("usage: credvault get <id>")
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
	fmt.Println(e.Secret)
}
