package main

import (
	"fmt"
	"os"
	"strconv"

	"credvault/internal/model"
)

func cmdSettings() {
	resp, err := apiRequest("GET", "/settings", nil)
	if err != nil {
		fatal("request failed: %v", err)
	}
	var settings model.Settings
	if err := apiResult(resp, &settings); err != nil {
		fatal("%v", err)
	}

	if len(os.Args) < 4 {
		fmt.Printf("auto-lock:     %d minutes\n", settings.AutoLockMinutes)
		fmt.Printf("expiry-window: %d days\n", settings.ExpiryWindowDays)
		fmt.Printf("breach-check:  %t\n", settings.BreachCheck)
		return
	}

	key, value := os.Args[2], os.Args[3]
	switch key {
	case "auto-lock":
		n, err := strconv.Atoi(value)
		if err != nil {
			fatal("auto-lock wants a number of minutes")
		}
		settings.AutoLockMinutes = n
	case "expiry-window":
		n, err := strconv.Atoi(value)
		if err != nil {
			fatal("expiry-window wants a number of days")
		}
		settings.ExpiryWindowDays = n
	case "breach-check":
		b, err := strconv.ParseBool(value)
		if err != nil {
			fatal("breach-check wants true or false")
		}
		settings.BreachCheck = b
	default:
		fatal("unknown setting %q (auto-lock, expiry-window, breach-check)", key)
	}

	resp, err = apiRequest("PUT", "/settings", settings)
	if err != nil {
		fatal("request failed: %v", err)
	}
	if err := apiResult(resp, nil); err != nil {
		fatal("%v", err)
	}
	fmt.Println("Settings updated.")
}
