package ads

import (
	"context"
	"fmt"
	"time"

	"github.com/refsync/refsync/internal/bibtex"
	"github.com/refsync/refsync/internal/paper"
)

// Lookup is the external bibliographic authority consumed by the Engine.
// *Client satisfies it; tests substitute stubs.
type Lookup interface {
	SearchByArxivIDs(ctx context.Context, arxivIDs []string) (map[string]Record, error)
	FetchBibtex(ctx context.Context, bibcodes []string) (map[string]string, error)
}

// UpdateFunc applies a partial-field update to one paper by arXiv ID.
type UpdateFunc func(ctx context.Context, arxivID string, upd paper.Update) error

// Stats summarizes one reconciliation run.
type Stats struct {
	Synced    int `json:"synced"`    // Records found in ADS and merged
	Published int `json:"published"` // Subset of Synced classified as published
	NotFound  int `json:"not_found"` // Papers ADS has no record for
	Errors    int `json:"errors"`    // Papers whose merge or update failed
}

// itemOutcome is the per-paper result of a sync pass. Frequent outcomes
// like "not found" are values here, not error control flow.
type itemOutcome int

const (
	outcomeSynced itemOutcome = iota
	outcomeNotFound
	outcomeFailed
)

type itemResult struct {
	arxivID   string
	outcome   itemOutcome
	published bool
}

// Engine reconciles local papers against ADS records. Callers must not
// run two Sync invocations concurrently against the same paper store;
// overlapping runs could race on cite-key rewrites and sync timestamps.
type Engine struct {
	lookup     Lookup
	classifier *Classifier
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClassifier replaces the default publication classifier.
func WithClassifier(cl *Classifier) EngineOption {
	return func(e *Engine) {
		e.classifier = cl
	}
}

// WithClock overrides the sync timestamp source (for testing).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a reconciliation engine over the given authority.
func NewEngine(lookup Lookup, opts ...EngineOption) *Engine {
	e := &Engine{
		lookup:     lookup,
		classifier: NewClassifier(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync reconciles the given papers against ADS and applies the merged
// updates through apply. Eligibility filtering is the caller's job; every
// paper passed in is looked up.
//
// A failure of either batch call (search, export) aborts the whole run
// with no partial statistics. Per-paper failures are counted in
// Stats.Errors and never abort the batch.
func (e *Engine) Sync(ctx context.Context, papers []paper.Paper, apply UpdateFunc) (Stats, error) {
	if len(papers) == 0 {
		return Stats{}, nil
	}

	ids := make([]string, len(papers))
	for i, p := range papers {
		ids[i] = p.ArxivID
	}

	records, err := e.lookup.SearchByArxivIDs(ctx, ids)
	if err != nil {
		return Stats{}, fmt.Errorf("searching ADS: %w", err)
	}

	var bibcodes []string
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.Bibcode != "" && !seen[rec.Bibcode] {
			seen[rec.Bibcode] = true
			bibcodes = append(bibcodes, rec.Bibcode)
		}
	}

	bibtexByBibcode := map[string]string{}
	if len(bibcodes) > 0 {
		bibtexByBibcode, err = e.lookup.FetchBibtex(ctx, bibcodes)
		if err != nil {
			return Stats{}, fmt.Errorf("exporting BibTeX: %w", err)
		}
	}

	results := make([]itemResult, 0, len(papers))
	for _, p := range papers {
		results = append(results, e.syncOne(ctx, p, records, bibtexByBibcode, apply))
	}

	return foldResults(results), nil
}

// syncOne merges one paper with its ADS record (if any) and applies the
// update. Every outcome advances LastCitationSync, success or not found.
func (e *Engine) syncOne(ctx context.Context, p paper.Paper, records map[string]Record, bibtexByBibcode map[string]string, apply UpdateFunc) itemResult {
	now := e.now().UTC()

	rec, found := records[p.ArxivID]
	if !found {
		upd := paper.Update{LastCitationSync: &now}
		if err := apply(ctx, p.ArxivID, upd); err != nil {
			return itemResult{arxivID: p.ArxivID, outcome: outcomeFailed}
		}
		return itemResult{arxivID: p.ArxivID, outcome: outcomeNotFound}
	}

	isPub := e.classifier.IsPublished(rec)

	upd := paper.Update{
		ADSBibcode:       &rec.Bibcode,
		IsPublished:      &isPub,
		LastCitationSync: &now,
	}

	if doi := rec.FirstDOI(); doi != "" {
		upd.DOI = &doi
	}

	if isPub {
		if ref := composeJournalRef(rec); ref != "" {
			upd.JournalRef = &ref
		}
	}

	if raw, ok := bibtexByBibcode[rec.Bibcode]; ok {
		// The ADS export keys entries by bibcode; restore the locally-owned
		// cite key so the paper's identity survives the source change.
		if p.CiteKey != "" {
			raw = bibtex.RewriteKey(raw, p.CiteKey)
		}
		src := paper.SourceADS
		upd.Bibtex = &raw
		upd.BibtexSource = &src
	}

	if err := apply(ctx, p.ArxivID, upd); err != nil {
		return itemResult{arxivID: p.ArxivID, outcome: outcomeFailed}
	}

	return itemResult{arxivID: p.ArxivID, outcome: outcomeSynced, published: isPub}
}

// composeJournalRef builds "venue, volume, page" from whichever parts the
// record has, venue first.
func composeJournalRef(rec Record) string {
	if rec.Pub == "" {
		return ""
	}
	ref := rec.Pub
	if rec.Volume != "" {
		ref += ", " + rec.Volume
	}
	if page := rec.FirstPage(); page != "" {
		ref += ", " + page
	}
	return ref
}

// foldResults aggregates per-item results into run statistics.
func foldResults(results []itemResult) Stats {
	var stats Stats
	for _, r := range results {
		switch r.outcome {
		case outcomeSynced:
			stats.Synced++
			if r.published {
				stats.Published++
			}
		case outcomeNotFound:
			stats.NotFound++
		case outcomeFailed:
			stats.Errors++
		}
	}
	return stats
}
