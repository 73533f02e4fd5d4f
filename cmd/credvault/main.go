package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "signup":
		cmdSignup()
	case "login":
		cmdLogin()
	case "logout", "lock":
		cmdLogout()
	case "serve":
		cmdServe()
	case "status":
		cmdStatus()
	case "add":
		cmdAdd()
	case "get":
		cmdGet()
	case "list":
		cmdList()
	case "update":
		cmdUpdate()
	case "delete":
		cmdDelete()
	case "totp":
		cmdTOTP()
	case "report":
		cmdReport()
	case "export":
		cmdExport()
	case "audit":
		cmdAudit()
	case "users":
		cmdUsers()
	case "settings":
		cmdSettings()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: credvault <command> [args]

Commands:
  signup                Create a new vault account (starts background server)
  login                 Unlock your vault (starts background server)
  logout                Lock the vault and stop the server
  serve                 Run the server in the foreground
  status                Show vault status
  add <title>           Add a credential (prompts for username/password)
  get <id>              Reveal a credential's password
  list                  List stored credentials
  update <id>           Update a credential's password
  delete <id>           Delete a credential
  totp <id>             Show the current TOTP code for a credential
  report                Run the security analysis report
  export                Export all decrypted credentials as JSON
  audit                 Show the access audit log
  users                 List registered accounts (hashes and hints only)
  settings [key value]  Show or change vault settings`)
}
