package main

import (
	"fmt"
	"os"
)

func cmdTOTP() {
	if len(os.Args) < 3 {
		fatal("usage: credvault totp <id>")
	}
	id := os.Args[2]

	resp, err := apiRequest("GET", "/entries/"+id+"/totp", nil)
	if err != nil {
		fatal("request failed: %v", err)
	}

	var result struct {
		Code      string `json:"code"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := apiResult(resp, &result); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("%s  (valid for %ds)\n", result.Code, result.ExpiresIn)
}
