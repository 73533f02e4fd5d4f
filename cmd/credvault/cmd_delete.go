package main

import (
	"fmt"
	"os"
)

func cmdDelete() {
	if len(os.Args) < 3 {
		fatal("usage: credvault delete <id>")
	}
	id := os.Args[2]

	resp, err := apiRequest("DELETE", "/entries/"+id, nil)
	if err != nil {
		fatal("request failed: %v", err)
	}
	if err := apiResult(resp, nil); err != nil {
		fatal("%v", err)
	}
	fmt.Println("Deleted.")
}
