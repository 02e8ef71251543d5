package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/refsync/refsync/internal/paper"
)

// Output formatting constants.
const (
	DefaultListLimit = 50 // Default limit for list/search commands

	ListTitleMaxLen = 60 // Title truncation in list output
	TextWrapWidth   = 60 // Standard text wrap width
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status  string `json:"status"`
	ArxivID string `json:"arxiv_id,omitempty"`
	Path    string `json:"path,omitempty"`
}

// printPaperLine prints a paper as one list row.
func printPaperLine(p paper.Paper) {
	marker := " "
	if p.Starred {
		marker = "*"
	}
	pub := ""
	if p.IsPublished {
		pub = " [published]"
	}
	fmt.Printf("%s %-14s %s%s\n", marker, p.ArxivID, truncateString(p.Title, ListTitleMaxLen), pub)
	fmt.Printf("  %s (%d)", formatAuthorsShort(p.Authors, 3), p.Published.Year())
	if p.CiteKey != "" {
		fmt.Printf("  [%s]", p.CiteKey)
	}
	fmt.Println()
}

// printPaperDetail prints a full paper record.
func printPaperDetail(p paper.Paper) {
	fmt.Println(p.ArxivID)
	fmt.Println(strings.Repeat("═", 70))
	fmt.Println()

	fmt.Printf("Title:    %s\n", wrapText(p.Title, TextWrapWidth, "          "))
	fmt.Println()
	if len(p.Authors) > 0 {
		fmt.Printf("Authors:  %s\n", wrapText(strings.Join(p.Authors, ", "), TextWrapWidth, "          "))
		fmt.Println()
	}

	if p.CiteKey != "" {
		fmt.Printf("Cite key: %s\n", p.CiteKey)
	}
	if p.IsPublished {
		fmt.Printf("Status:   published")
		if p.JournalRef != "" {
			fmt.Printf(" (%s)", p.JournalRef)
		}
		fmt.Println()
	} else {
		fmt.Println("Status:   preprint")
	}
	if p.DOI != "" {
		fmt.Printf("DOI:      %s\n", p.DOI)
	}
	fmt.Printf("Date:     %s\n", p.Published.Format("2006-01-02"))
	if len(p.Categories) > 0 {
		fmt.Printf("Categories: %s\n", strings.Join(p.Categories, ", "))
	}
	if len(p.Shelves) > 0 {
		fmt.Printf("Shelves:  %s\n", strings.Join(p.Shelves, ", "))
	}
	if len(p.Tags) > 0 {
		fmt.Printf("Tags:     %s\n", strings.Join(p.Tags, ", "))
	}
	if p.Status != paper.StatusUnset {
		fmt.Printf("Reading:  %s\n", p.Status)
	}

	if p.Abstract != "" {
		fmt.Println()
		fmt.Println("Abstract:")
		fmt.Printf("  %s\n", wrapText(p.Abstract, 68, "  "))
	}
	if p.Notes != "" {
		fmt.Println()
		fmt.Println("Notes:")
		fmt.Printf("  %s\n", wrapText(p.Notes, 68, "  "))
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// formatAuthorsShort formats authors with "et al." for more than maxCount.
func formatAuthorsShort(authors []string, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}

	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, a)
	}
	return strings.Join(names, ", ")
}
