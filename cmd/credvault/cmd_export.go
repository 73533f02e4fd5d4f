package main

import (
	"encoding/json"
	"fmt"
	"os"

	"credvault/internal/vault"
)

func cmdExport() {
	resp, err := apiRequest("GET", "/export", nil)
	if err != nil {
		fatal("request failed: %v", err)
	}

	var bundle vault.ExportBundle
	if err := apiResult(resp, &bundle); err != nil {
		fatal("%v", err)
	}

	fmt.Fprintln(os.Stderr, "Warning: the export contains plaintext passwords.")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		fatal("encoding: %v", err)
	}
}
