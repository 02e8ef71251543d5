// Package arxiv fetches paper metadata from the arXiv Atom API.
package arxiv

import (
	"regexp"
	"strings"
)

// Patterns that extract an arXiv ID from the URL and ID forms users paste.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)arxiv\.org/abs/(\d{4}\.\d{4,5}(?:v\d+)?)`),
	regexp.MustCompile(`(?i)arxiv\.org/pdf/(\d{4}\.\d{4,5}(?:v\d+)?)`),
	regexp.MustCompile(`(?i)arxiv\.org/abs/([a-z-]+/\d{7})`),
	regexp.MustCompile(`(?i)^(\d{4}\.\d{4,5}(?:v\d+)?)$`),
	regexp.MustCompile(`(?i)^([a-z-]+/\d{7})$`),
}

var versionSuffix = regexp.MustCompile(`v\d+$`)

// ParseID extracts an arXiv ID from a URL or raw ID string. It returns
// the empty string if nothing recognizable is found.
func ParseID(urlOrID string) string {
	trimmed := strings.TrimSpace(urlOrID)
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(trimmed); m != nil {
			return m[1]
		}
	}
	return ""
}

// NormalizeID strips a trailing version suffix (2301.07041v2 -> 2301.07041).
func NormalizeID(arxivID string) string {
	return versionSuffix.ReplaceAllString(arxivID, "")
}
