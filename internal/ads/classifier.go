package ads

import "strings"

// DefaultJournalFragments are lowercase substrings of venue names that
// indicate a peer-reviewed journal. The list is a heuristic lookup table;
// extend it via NewClassifier rather than editing control flow.
var DefaultJournalFragments = []string{
	"apj",
	"mnras",
	"a&a",
	"nature",
	"science",
	"phys. rev",
	"journal",
	"monthly notices",
}

// preprintVenues are venue strings that name a preprint server outright.
var preprintVenues = map[string]bool{
	"eprint":  true,
	"e-print": true,
}

// Classifier decides whether a bibliographic record represents a
// peer-reviewed publication rather than a preprint-only record.
type Classifier struct {
	fragments []string
}

// NewClassifier creates a Classifier recognizing the default journal name
// fragments plus any extras (matched lowercase, substring semantics).
func NewClassifier(extraFragments ...string) *Classifier {
	fragments := make([]string, 0, len(DefaultJournalFragments)+len(extraFragments))
	fragments = append(fragments, DefaultJournalFragments...)
	for _, f := range extraFragments {
		fragments = append(fragments, strings.ToLower(f))
	}
	return &Classifier{fragments: fragments}
}

// IsPublished reports whether the record looks like a journal publication.
// Signals are tried strongest-first and short-circuit:
//
//  1. DOI and volume both present.
//  2. Doctype "article" with a venue that is not arXiv or a bare
//     preprint marker.
//  3. Venue contains a known journal-name fragment.
//
// False negatives are acceptable here; a paper stays unpublished until
// the evidence arrives. The ordering exists to avoid false positives.
func (cl *Classifier) IsPublished(rec Record) bool {
	if rec.FirstDOI() != "" && rec.Volume != "" {
		return true
	}

	pubLower := strings.ToLower(rec.Pub)

	if rec.Doctype == "article" && rec.Pub != "" {
		if !strings.Contains(pubLower, "arxiv") && !preprintVenues[pubLower] {
			return true
		}
	}

	if rec.Pub != "" {
		for _, fragment := range cl.fragments {
			if strings.Contains(pubLower, fragment) {
				return true
			}
		}
	}

	return false
}
