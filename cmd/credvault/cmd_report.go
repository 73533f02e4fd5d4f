package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"credvault/internal/analyzer"
)

func cmdReport() {
	resp, err := apiRequest("GET", "/report", nil)
	if err != nil {
		fatal("request failed: %v", err)
	}

	var report analyzer.Report
	if err := apiResult(resp, &report); err != nil {
		fatal("%v", err)
	}

	scoreColor := color.New(color.FgGreen)
	switch {
	case report.Score < 50:
		scoreColor = color.New(color.FgRed)
	case report.Score < 80:
		scoreColor = color.New(color.FgYellow)
	}

	fmt.Printf("Security score: %s\n", scoreColor.Sprintf("%d/100", report.Score))
	fmt.Printf("Credentials:    %d\n", report.Total)
	fmt.Printf("Weak:           %d\n", report.Weak)
	fmt.Printf("Reused:         %d\n", report.Reused)
	fmt.Printf("Expired:        %d\n", report.Expired)
	fmt.Printf("Compromised:    %d\n", report.Compromised)

	var flagged []analyzer.Finding
	for _, f := range report.Findings {
		if f.Weak || f.Reused || f.Expired || f.Compromised {
			flagged = append(flagged, f)
		}
	}
	if len(flagged) == 0 {
		return
	}

	fmt.Println()
	for _, f := range flagged {
		var tags []string
		if f.Weak {
			tags = append(tags, color.YellowString("weak"))
		}
		if f.Reused {
			tags = append(tags, color.YellowString("reused"))
		}
		if f.Expired {
			tags = append(tags, color.YellowString("expired"))
		}
		if f.Compromised {
			tags = append(tags, color.RedString("compromised"))
		}
		fmt.Printf("  %-30s strength %3d  %s\n", f.Title, f.Score, strings.Join(tags, ", "))
	}
}
