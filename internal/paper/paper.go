// Package paper defines the core domain types for the reference library.
package paper

import "time"

// BibtexSource records the provenance of a paper's BibTeX record.
type BibtexSource string

const (
	// SourceArxiv marks a record generated locally from arXiv metadata.
	SourceArxiv BibtexSource = "arxiv"
	// SourceADS marks a record fetched from the ADS export API.
	SourceADS BibtexSource = "ads"
)

// ReadingStatus tracks whether a paper has been read.
type ReadingStatus string

const (
	StatusRead   ReadingStatus = "read"
	StatusToRead ReadingStatus = "to-read"
	StatusUnset  ReadingStatus = ""
)

// Paper represents an arXiv paper in the library.
type Paper struct {
	// Identity and arXiv metadata
	ArxivID    string    `json:"arxiv_id"` // Immutable, version-stripped (primary key)
	Title      string    `json:"title"`
	Authors    []string  `json:"authors"`
	Abstract   string    `json:"abstract"`
	Categories []string  `json:"categories"`
	Published  time.Time `json:"published"`
	Updated    time.Time `json:"updated"`
	PDFURL     string    `json:"pdf_url"`
	ArxivURL   string    `json:"arxiv_url"`

	// User data
	Shelves    []string      `json:"shelves"`
	Tags       []string      `json:"tags"`
	Status     ReadingStatus `json:"status"`
	Starred    bool          `json:"starred"`
	Notes      string        `json:"notes,omitempty"`
	CoverImage string        `json:"cover_image,omitempty"`
	AddedAt    time.Time     `json:"added_at"`

	// Citation fields
	Bibtex           string       `json:"bibtex,omitempty"`
	BibtexSource     BibtexSource `json:"bibtex_source"`
	CiteKey          string       `json:"cite_key,omitempty"` // e.g. "Curie:2025"; stable once assigned
	IsPublished      bool         `json:"is_published"`
	DOI              string       `json:"doi,omitempty"`
	JournalRef       string       `json:"journal_ref,omitempty"`
	ADSBibcode       string       `json:"ads_bibcode,omitempty"`
	LastCitationSync *time.Time   `json:"last_citation_sync,omitempty"`
}

// SyncEligible reports whether the paper should be included in an
// "only unsynced" citation sync. A paper already marked published that
// has been synced once is never resynced, even if its journal reference
// changes upstream.
func (p Paper) SyncEligible() bool {
	return !p.IsPublished || p.LastCitationSync == nil
}

// Update holds a partial set of paper fields to change. Nil pointers
// leave the corresponding field untouched.
type Update struct {
	Shelves *[]string      `json:"shelves,omitempty"`
	Tags    *[]string      `json:"tags,omitempty"`
	Status  *ReadingStatus `json:"status,omitempty"`
	Notes   *string        `json:"notes,omitempty"`
	Starred *bool          `json:"starred,omitempty"`

	// Citation fields (written by the ADS sync engine)
	Bibtex           *string       `json:"bibtex,omitempty"`
	BibtexSource     *BibtexSource `json:"bibtex_source,omitempty"`
	CiteKey          *string       `json:"cite_key,omitempty"`
	IsPublished      *bool         `json:"is_published,omitempty"`
	DOI              *string       `json:"doi,omitempty"`
	JournalRef       *string       `json:"journal_ref,omitempty"`
	ADSBibcode       *string       `json:"ads_bibcode,omitempty"`
	LastCitationSync *time.Time    `json:"last_citation_sync,omitempty"`
}

// Shelf is a named grouping of papers.
type Shelf struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	PaperCount  int       `json:"paper_count"`
}

// Tag is a freeform label with an optional display color.
type Tag struct {
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	PaperCount int    `json:"paper_count"`
}

// SearchQuery describes a filtered paper listing.
type SearchQuery struct {
	Text    string
	Shelves []string
	Tags    []string
	Status  *ReadingStatus
	Limit   int
	Offset  int
}

// SearchResult is a page of papers plus the total match count.
type SearchResult struct {
	Papers []Paper `json:"papers"`
	Total  int     `json:"total"`
}
