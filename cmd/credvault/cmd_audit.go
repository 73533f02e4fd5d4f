package main

import (
	"fmt"

	"credvault/internal/store"
)

func cmdAudit() {
	resp, err := apiRequest("GET", "/audit", nil)
	if err != nil {
		fatal("request failed: %v", err)
	}

	var entries []store.AuditEntry
	if err := apiResult(resp, &entries); err != nil {
		fatal("%v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No audit entries.")
		return
	}

	for _, e := range entries {
		detail := ""
		if e.Detail != "" {
			detail = fmt.Sprintf(" (%s)", e.Detail)
		}
		fmt.Printf("%-20s %-10s%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, detail)
	}
}
