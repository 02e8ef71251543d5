package bibtex

import (
	"strings"
	"testing"
	"time"

	"github.com/refsync/refsync/internal/paper"
)

func testPaper() paper.Paper {
	return paper.Paper{
		ArxivID:    "2301.07041",
		Title:      "Galaxy Formation & Evolution at z_phot > 10",
		Authors:    []string{"Marie Curie", "Smith, John"},
		Categories: []string{"astro-ph.GA", "astro-ph.CO"},
		Published:  time.Date(2023, time.January, 17, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerate(t *testing.T) {
	got := Generate(testPaper(), "Curie:2023")

	if !strings.HasPrefix(got, "@ARTICLE{Curie:2023,") {
		t.Errorf("Generate() should open with @ARTICLE{Curie:2023, got:\n%s", got)
	}
	if !strings.Contains(got, `author = {{Curie}, Marie and {Smith, John}}`) {
		t.Errorf("Generate() author formatting wrong, got:\n%s", got)
	}
	if !strings.Contains(got, `title = "{Galaxy Formation \& Evolution at z\_phot > 10}"`) {
		t.Errorf("Generate() title escaping wrong, got:\n%s", got)
	}
	if !strings.Contains(got, "year = 2023,") {
		t.Errorf("Generate() missing year, got:\n%s", got)
	}
	if !strings.Contains(got, "month = jan,") {
		t.Errorf("Generate() missing month, got:\n%s", got)
	}
	if !strings.Contains(got, "eprint = {2301.07041},") {
		t.Errorf("Generate() missing eprint, got:\n%s", got)
	}
	if !strings.Contains(got, "primaryClass = {astro-ph.GA},") {
		t.Errorf("Generate() should use first category, got:\n%s", got)
	}
	if !strings.Contains(got, "adsurl = {https://ui.adsabs.harvard.edu/abs/arXiv:2301.07041}") {
		t.Errorf("Generate() missing adsurl, got:\n%s", got)
	}
}

func TestGenerate_DefaultPrimaryClass(t *testing.T) {
	p := testPaper()
	p.Categories = nil
	got := Generate(p, "Curie:2023")
	if !strings.Contains(got, "primaryClass = {astro-ph},") {
		t.Errorf("Generate() should default primaryClass to astro-ph, got:\n%s", got)
	}
}

func TestGenerate_FieldOrder(t *testing.T) {
	got := Generate(testPaper(), "Curie:2023")
	fields := []string{"author", "title", "year", "month", "eprint", "archivePrefix", "primaryClass", "adsurl"}
	last := -1
	for _, f := range fields {
		idx := strings.Index(got, f+" = ")
		if idx < 0 {
			t.Fatalf("Generate() missing field %q:\n%s", f, got)
		}
		if idx < last {
			t.Errorf("Generate() field %q out of order:\n%s", f, got)
		}
		last = idx
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"first last", []string{"Marie Curie"}, "{Curie}, Marie"},
		{"already comma", []string{"Curie, Marie"}, "{Curie, Marie}"},
		{"single token", []string{"Madonna"}, "{Madonna}"},
		{"middle names", []string{"John Ronald Reuel Tolkien"}, "{Tolkien}, John Ronald Reuel"},
		{"joined with and", []string{"A One", "B Two"}, "{One}, A and {Two}, B"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAuthors(tt.authors); got != tt.want {
				t.Errorf("FormatAuthors(%v) = %q, want %q", tt.authors, got, tt.want)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ampersand", "A & B", `A \& B`},
		{"percent", "50% done", `50\% done`},
		{"underscore", "z_phot", `z\_phot`},
		{"hash", "#1", `\#1`},
		{"already escaped untouched", `A \& B`, `A \& B`},
		{"mixed", `\&_`, `\&\_`},
		{"no specials", "plain title", "plain title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.in); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscape_Idempotent(t *testing.T) {
	once := Escape("Galaxy & Dust")
	twice := Escape(once)
	if once != twice {
		t.Errorf("Escape() not idempotent: %q != %q", once, twice)
	}
}

func TestRewriteKey_Surgical(t *testing.T) {
	// An ADS-style record with formatting Generate never produces.
	record := "@ARTICLE{OldKey2020,\n" +
		"   author = {{Someone}, A.},\n" +
		"    title = \"{A Title}\",\n" +
		"  journal = {\\apj},\n" +
		"     year = 2020,\n" +
		"      doi = {10.1000/xyz}\n" +
		"}\n"

	got := RewriteKey(record, "Smith:2020")

	want := strings.Replace(record, "OldKey2020", "Smith:2020", 1)
	if got != want {
		t.Errorf("RewriteKey() = %q, want %q", got, want)
	}
	// Everything after the first comma must be byte-identical.
	_, gotRest, _ := strings.Cut(got, ",")
	_, wantRest, _ := strings.Cut(record, ",")
	if gotRest != wantRest {
		t.Errorf("RewriteKey() altered record body:\n%s", got)
	}
}

func TestRewriteKey_FirstEntryOnly(t *testing.T) {
	record := "@ARTICLE{first,\n year = 2020\n}\n@ARTICLE{second,\n year = 2021\n}\n"
	got := RewriteKey(record, "New:2020")
	if !strings.Contains(got, "@ARTICLE{New:2020,") {
		t.Errorf("RewriteKey() did not replace first key:\n%s", got)
	}
	if !strings.Contains(got, "@ARTICLE{second,") {
		t.Errorf("RewriteKey() must not touch later entries:\n%s", got)
	}
}

func TestRewriteKey_WhitespaceBeforeBrace(t *testing.T) {
	record := "@article {  spaced , year = 2020 }"
	got := RewriteKey(record, "New:2020")
	if !strings.HasPrefix(got, "@article {New:2020,") {
		t.Errorf("RewriteKey() = %q", got)
	}
}

func TestRewriteKey_NoEntry(t *testing.T) {
	if got := RewriteKey("not bibtex at all", "K"); got != "not bibtex at all" {
		t.Errorf("RewriteKey() on non-entry text = %q", got)
	}
}
