package arxiv

import (
	"regexp"
	"strings"
)

// Text-mode commands whose braces are stripped, keeping the content.
var wrapperCommands = regexp.MustCompile(`\\(?:textit|textbf|textrm|texttt|emph|text)\{([^{}]*)\}`)

// Accent commands mapped to their Unicode forms. This covers the accents
// that show up regularly in arXiv author lists and titles; anything else
// passes through untouched for MathJax-style rendering downstream.
var accentReplacer = strings.NewReplacer(
	`\'e`, "é", `\'{e}`, "é",
	"\\`e", "è", "\\`{e}", "è",
	`\"o`, "ö", `\"{o}`, "ö",
	`\"u`, "ü", `\"{u}`, "ü",
	`\"a`, "ä", `\"{a}`, "ä",
	`\~n`, "ñ", `\~{n}`, "ñ",
	`\c{c}`, "ç",
	`\^o`, "ô", `\^{o}`, "ô",
	`\aa`, "å",
	`\o`, "ø",
)

// Escaped specials unescaped for display.
var escapeReplacer = strings.NewReplacer(
	`\&`, "&",
	`\%`, "%",
	`\#`, "#",
	`\_`, "_",
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// mathSegment matches inline math, which is preserved verbatim.
var mathSegment = regexp.MustCompile(`\$[^$]*\$`)

// CleanLatex converts common LaTeX markup in arXiv titles and abstracts to
// plain text. Inline math ($...$) is left as-is so a renderer can handle it.
func CleanLatex(text string) string {
	if text == "" {
		return text
	}

	text = whitespaceRun.ReplaceAllString(text, " ")

	// Shield math segments from the text-mode rewrites.
	var saved []string
	text = mathSegment.ReplaceAllStringFunc(text, func(m string) string {
		saved = append(saved, m)
		return "\x00" + string(rune('0'+len(saved)-1)) + "\x00"
	})

	for wrapperCommands.MatchString(text) {
		text = wrapperCommands.ReplaceAllString(text, "$1")
	}
	text = accentReplacer.Replace(text)
	text = escapeReplacer.Replace(text)

	for i, m := range saved {
		text = strings.Replace(text, "\x00"+string(rune('0'+i))+"\x00", m, 1)
	}

	return strings.TrimSpace(text)
}
