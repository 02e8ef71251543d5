// Package citekey derives stable human-readable citation keys
// (Surname:Year) from paper metadata.
package citekey

import (
	"fmt"
	"strings"
	"unicode"
)

// Name suffixes that are skipped when scanning for a surname.
var nameSuffixes = map[string]bool{
	"jr":  true,
	"sr":  true,
	"ii":  true,
	"iii": true,
	"iv":  true,
	"phd": true,
	"md":  true,
}

// SurnameToken extracts a canonical surname token from an author list,
// suitable for embedding in a citation key. It always returns a non-empty
// string; an empty author list yields "Unknown".
func SurnameToken(authors []string) string {
	if len(authors) == 0 {
		return "Unknown"
	}

	first := strings.TrimSpace(authors[0])
	var surname string
	if idx := strings.Index(first, ","); idx >= 0 {
		// "Curie, Marie" format
		surname = strings.TrimSpace(first[:idx])
	} else {
		parts := strings.Fields(first)
		if len(parts) == 0 {
			return "Unknown"
		}
		// Scan from the end, skipping suffixes like "Jr." or "III"
		surname = parts[len(parts)-1]
		for i := len(parts) - 1; i >= 0; i-- {
			token := strings.ToLower(strings.TrimSuffix(parts[i], "."))
			if !nameSuffixes[token] {
				surname = parts[i]
				break
			}
		}
	}

	cleaned := sanitize(surname)
	if cleaned == "" {
		return "Unknown"
	}
	return cleaned
}

// sanitize strips every rune that is not a letter, digit, whitespace, or
// hyphen, then trims surrounding whitespace. Accented letters survive.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Allocate returns a cite key of the form Surname:Year that does not
// collide with any key in existing. Collisions get a single lowercase
// letter suffix (a-z); if all 26 are taken, the arXiv ID (with dots
// replaced by underscores) is appended, which is guaranteed unique.
//
// Allocate does not mutate existing; batch callers insert the returned
// key themselves before the next allocation.
func Allocate(surname string, year int, arxivID string, existing map[string]bool) string {
	base := fmt.Sprintf("%s:%d", surname, year)
	if !existing[base] {
		return base
	}

	for c := 'a'; c <= 'z'; c++ {
		candidate := base + string(c)
		if !existing[candidate] {
			return candidate
		}
	}

	return base + "_" + strings.ReplaceAll(arxivID, ".", "_")
}
