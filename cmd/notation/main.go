// Command notation parses design notation text and prints the bar schedule.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"rebar-inspect/internal/compliance"
	"rebar-inspect/internal/ocr"
)

func main() {
	detected := flag.Int("detected", -1, "Detected bar count to check against the design total")
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if text == "" {
		// No arguments, read from stdin.
		sc := bufio.NewScanner(os.Stdin)
		var lines []string
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		text = strings.Join(lines, "\n")
	}
	if strings.TrimSpace(text) == "" {
		fmt.Println("Usage: notation [-detected N] \"KZ1 650x600 4C25 8C22\"  (or pipe text on stdin)")
		os.Exit(1)
	}

	extraction := ocr.ParseDesignText(text)

	if extraction.MemberID != "" {
		fmt.Printf("Member:  %s\n", extraction.MemberID)
	}
	if extraction.SectionSize != nil {
		fmt.Printf("Section: %dx%d mm\n", extraction.SectionSize.WidthMm, extraction.SectionSize.HeightMm)
	}
	if len(extraction.BarGroups) == 0 {
		fmt.Println("No bar groups recognized")
		os.Exit(1)
	}
	for _, g := range extraction.BarGroups {
		fmt.Printf("  %d x C%d\n", g.Count, g.Diameter)
	}
	fmt.Printf("Design total: %d bars\n", extraction.DesignTotal)

	if *detected >= 0 {
		result, err := compliance.Evaluate(*detected, extraction.DesignTotal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Compliance check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s: %s\n", result.Verdict, result.Message)
		if result.Verdict == compliance.VerdictFail {
			os.Exit(2)
		}
	}
}
