// Package bibtex renders BibTeX records from paper metadata and rewrites
// citation keys in externally-sourced records.
package bibtex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/refsync/refsync/internal/paper"
)

// monthAbbrevs maps month numbers to BibTeX month macros.
var monthAbbrevs = [12]string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// escapable characters that need a backslash in BibTeX field values.
const escapable = "&%_#"

// Generate renders a BibTeX ARTICLE record for an arXiv paper using the
// given citation key.
func Generate(p paper.Paper, citeKey string) string {
	authors := FormatAuthors(p.Authors)
	title := Escape(p.Title)
	year := p.Published.Year()
	month := monthAbbrevs[int(p.Published.Month())-1]

	primaryClass := "astro-ph"
	if len(p.Categories) > 0 {
		primaryClass = p.Categories[0]
	}

	return fmt.Sprintf(`@ARTICLE{%s,
       author = {%s},
        title = "{%s}",
         year = %d,
        month = %s,
       eprint = {%s},
archivePrefix = {arXiv},
 primaryClass = {%s},
       adsurl = {https://ui.adsabs.harvard.edu/abs/arXiv:%s}
}`, citeKey, authors, title, year, month, p.ArxivID, primaryClass, p.ArxivID)
}

// FormatAuthors renders an author list in BibTeX style, joined with " and ".
// Names already in "Last, First" form are passed through braced; otherwise
// the final whitespace token is treated as the surname.
func FormatAuthors(authors []string) string {
	formatted := make([]string, 0, len(authors))
	for _, author := range authors {
		author = strings.TrimSpace(author)
		if strings.Contains(author, ",") {
			formatted = append(formatted, "{"+author+"}")
			continue
		}
		parts := strings.Fields(author)
		if len(parts) >= 2 {
			last := parts[len(parts)-1]
			first := strings.Join(parts[:len(parts)-1], " ")
			formatted = append(formatted, "{"+last+"}, "+first)
		} else {
			formatted = append(formatted, "{"+author+"}")
		}
	}
	return strings.Join(formatted, " and ")
}

// Escape backslash-escapes &, %, _ and # in a field value. An occurrence
// already preceded by a backslash is left alone, so escaping text that
// contains LaTeX commands is safe to repeat.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	prev := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if strings.IndexByte(escapable, c) >= 0 && prev != '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
		prev = c
	}
	return b.String()
}

// keyPattern matches the entry opener "@TYPE{key," capturing everything
// up to and including the opening brace.
var keyPattern = regexp.MustCompile(`(@\w+\s*\{)\s*[^,]+,`)

// RewriteKey replaces the citation key of the first entry in bibtexText
// with newKey, leaving the rest of the record byte-for-byte intact. It
// makes no assumptions about the record's internal formatting, so it works
// on records exported by ADS as well as locally generated ones.
func RewriteKey(bibtexText, newKey string) string {
	loc := keyPattern.FindStringSubmatchIndex(bibtexText)
	if loc == nil {
		return bibtexText
	}
	opener := bibtexText[loc[2]:loc[3]]
	return bibtexText[:loc[0]] + opener + newKey + "," + bibtexText[loc[1]:]
}
