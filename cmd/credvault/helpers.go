package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"credvault/internal/config"
)

var cfg = config.Load()

func sessionPath() string {
	return filepath.Join(cfg.DataDir, ".session")
}

func pidPath() string {
	return filepath.Join(cfg.DataDir, "credvault.pid")
}

func readSessionToken() (string, error) {
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		return "", fmt.Errorf("vault is locked (no session file); run 'credvault login'")
	}
	return strings.TrimSpace(string(data)), nil
}

func writeSessionToken(token string) error {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return err
	}
	return os.WriteFile(sessionPath(), []byte(token+"\n"), 0600)
}

func removeSessionToken() {
	os.Remove(sessionPath())
}

func writePID(pid int) error {
	return os.WriteFile(pidPath(), []byte(strconv.Itoa(pid)+"\n"), 0600)
}

func readPID() (int, error) {
	data, err := os.ReadFile(pidPath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePID() {
	os.Remove(pidPath())
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if !term.IsTerminal(int(syscall.Stdin)) {
		// Piped input (scripts, tests): read one line instead.
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func promptLine(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	var line string
	fmt.Scanln(&line)
	return strings.TrimSpace(line)
}

// apiRequest makes an authenticated HTTP request to the local vault server.
func apiRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, cfg.ServerURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := readSessionToken()
	if err == nil {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return http.DefaultClient.Do(req)
}

// apiResult decodes a JSON response or returns the server's error message.
func apiResult(resp *http.Response, target any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		switch {
		case errResp.Kind == "locked":
			return fmt.Errorf("vault is locked; run 'credvault login'")
		case errResp.Error != "":
			return fmt.Errorf("%s", errResp.Error)
		default:
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}
	}
	if target != nil {
		return json.NewDecoder(resp.Body).Decode(target)
	}
	return nil
}

func fatal(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
