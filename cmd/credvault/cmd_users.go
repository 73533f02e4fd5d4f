package main

import (
	"fmt"

	"credvault/internal/store"
)

func cmdUsers() {
	resp, err := apiRequest("GET", "/users", nil)
	if err != nil {
		fatal("request failed: %v", err)
	}

	var users []store.UserRecord
	if err := apiResult(resp, &users); err != nil {
		fatal("%v", err)
	}

	if len(users) == 0 {
		fmt.Println("No accounts registered.")
		return
	}

	for _, u := range users {
		last := "never"
		if !u.LastLogin.IsZero() {
			last = u.LastLogin.Format("2006-01-02 15:04")
		}
		fmt.Printf("%s…  hint: %-25s last login: %s\n",
			u.IdentityHash[:12], u.Hint, last)
	}
}
