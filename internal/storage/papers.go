package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/refsync/refsync/internal/paper"
)

// selectPaperFields is the standard column list for paper SELECT queries.
const selectPaperFields = `arxiv_id, title, authors_json, abstract, categories_json,
	published, updated, pdf_url, arxiv_url,
	shelves_json, tags_json, status, starred, notes, cover_image, added_at,
	bibtex, bibtex_source, cite_key, is_published, doi, journal_ref,
	ads_bibcode, last_citation_sync`

// CreatePaper inserts a new paper. The arXiv ID must not already exist.
func (d *DB) CreatePaper(p paper.Paper) error {
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}
	categoriesJSON, err := json.Marshal(p.Categories)
	if err != nil {
		return fmt.Errorf("encoding categories: %w", err)
	}
	shelvesJSON, tagsJSON := marshalStringList(p.Shelves), marshalStringList(p.Tags)

	_, err = d.db.Exec(`
		INSERT INTO papers (
			arxiv_id, title, authors_json, abstract, categories_json,
			published, updated, pdf_url, arxiv_url,
			shelves_json, tags_json, status, starred, notes, cover_image, added_at,
			bibtex, bibtex_source, cite_key, is_published, doi, journal_ref,
			ads_bibcode, last_citation_sync
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ArxivID, p.Title, string(authorsJSON), p.Abstract, string(categoriesJSON),
		p.Published.UTC().Format(time.RFC3339), p.Updated.UTC().Format(time.RFC3339),
		p.PDFURL, p.ArxivURL,
		shelvesJSON, tagsJSON, string(p.Status), boolToInt(p.Starred),
		nullableString(p.Notes), nullableString(p.CoverImage),
		p.AddedAt.UTC().Format(time.RFC3339),
		nullableString(p.Bibtex), string(p.BibtexSource), nullableString(p.CiteKey),
		boolToInt(p.IsPublished), nullableString(p.DOI), nullableString(p.JournalRef),
		nullableString(p.ADSBibcode), nullableTime(p.LastCitationSync),
	)
	if err != nil {
		return fmt.Errorf("inserting paper %s: %w", p.ArxivID, err)
	}
	return nil
}

// GetPaper retrieves a paper by arXiv ID. Returns nil if not found.
func (d *DB) GetPaper(arxivID string) (*paper.Paper, error) {
	row := d.db.QueryRow(
		"SELECT "+selectPaperFields+" FROM papers WHERE arxiv_id = ?", arxivID)
	return scanPaper(row)
}

// PaperExists reports whether a paper with the given arXiv ID exists.
func (d *DB) PaperExists(arxivID string) (bool, error) {
	var one int
	err := d.db.QueryRow("SELECT 1 FROM papers WHERE arxiv_id = ?", arxivID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdatePaper applies a partial update to a paper and returns the updated
// row. Returns nil if the paper doesn't exist.
func (d *DB) UpdatePaper(arxivID string, upd paper.Update) (*paper.Paper, error) {
	exists, err := d.PaperExists(arxivID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var sets []string
	var values []any

	if upd.Shelves != nil {
		sets = append(sets, "shelves_json = ?")
		values = append(values, marshalStringList(*upd.Shelves))
	}
	if upd.Tags != nil {
		sets = append(sets, "tags_json = ?")
		values = append(values, marshalStringList(*upd.Tags))
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		values = append(values, string(*upd.Status))
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		values = append(values, nullableString(*upd.Notes))
	}
	if upd.Starred != nil {
		sets = append(sets, "starred = ?")
		values = append(values, boolToInt(*upd.Starred))
	}
	if upd.Bibtex != nil {
		sets = append(sets, "bibtex = ?")
		values = append(values, nullableString(*upd.Bibtex))
	}
	if upd.BibtexSource != nil {
		sets = append(sets, "bibtex_source = ?")
		values = append(values, string(*upd.BibtexSource))
	}
	if upd.CiteKey != nil {
		sets = append(sets, "cite_key = ?")
		values = append(values, nullableString(*upd.CiteKey))
	}
	if upd.IsPublished != nil {
		sets = append(sets, "is_published = ?")
		values = append(values, boolToInt(*upd.IsPublished))
	}
	if upd.DOI != nil {
		sets = append(sets, "doi = ?")
		values = append(values, nullableString(*upd.DOI))
	}
	if upd.JournalRef != nil {
		sets = append(sets, "journal_ref = ?")
		values = append(values, nullableString(*upd.JournalRef))
	}
	if upd.ADSBibcode != nil {
		sets = append(sets, "ads_bibcode = ?")
		values = append(values, nullableString(*upd.ADSBibcode))
	}
	if upd.LastCitationSync != nil {
		sets = append(sets, "last_citation_sync = ?")
		values = append(values, upd.LastCitationSync.UTC().Format(time.RFC3339))
	}

	if len(sets) > 0 {
		values = append(values, arxivID)
		query := fmt.Sprintf("UPDATE papers SET %s WHERE arxiv_id = ?", strings.Join(sets, ", "))
		if _, err := d.db.Exec(query, values...); err != nil {
			return nil, fmt.Errorf("updating paper %s: %w", arxivID, err)
		}
	}

	return d.GetPaper(arxivID)
}

// DeletePaper removes a paper. Returns true if a row was deleted.
func (d *DB) DeletePaper(arxivID string) (bool, error) {
	res, err := d.db.Exec("DELETE FROM papers WHERE arxiv_id = ?", arxivID)
	if err != nil {
		return false, fmt.Errorf("deleting paper %s: %w", arxivID, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListPapers returns papers ordered by added time, newest first.
func (d *DB) ListPapers(limit, offset int) ([]paper.Paper, error) {
	rows, err := d.db.Query(
		"SELECT "+selectPaperFields+" FROM papers ORDER BY added_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// SearchPapers returns papers matching a filtered query plus the total
// match count.
func (d *DB) SearchPapers(q paper.SearchQuery) (*paper.SearchResult, error) {
	var conditions []string
	var params []any

	if q.Text != "" {
		conditions = append(conditions,
			"arxiv_id IN (SELECT arxiv_id FROM papers_fts WHERE papers_fts MATCH ?)")
		escaped := strings.ReplaceAll(q.Text, `"`, `""`)
		params = append(params, `"`+escaped+`"`)
	}
	for _, tag := range q.Tags {
		conditions = append(conditions, "tags_json LIKE ?")
		params = append(params, `%"`+tag+`"%`)
	}
	for _, shelf := range q.Shelves {
		conditions = append(conditions, "shelves_json LIKE ?")
		params = append(params, `%"`+shelf+`"%`)
	}
	if q.Status != nil {
		conditions = append(conditions, "status = ?")
		params = append(params, string(*q.Status))
	}

	where := "1=1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	var total int
	if err := d.db.QueryRow(
		"SELECT COUNT(*) FROM papers WHERE "+where, params...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}

	// 0 means default page size; -1 passes through as SQLite "no limit".
	limit := q.Limit
	if limit == 0 {
		limit = 50
	}
	queryParams := append(params, limit, q.Offset)
	rows, err := d.db.Query(
		"SELECT "+selectPaperFields+" FROM papers WHERE "+where+
			" ORDER BY added_at DESC LIMIT ? OFFSET ?", queryParams...)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()

	papers, err := scanPapers(rows)
	if err != nil {
		return nil, err
	}
	return &paper.SearchResult{Papers: papers, Total: total}, nil
}

// SetCover records the cover image path for a paper.
func (d *DB) SetCover(arxivID, coverPath string) (*paper.Paper, error) {
	if _, err := d.db.Exec(
		"UPDATE papers SET cover_image = ? WHERE arxiv_id = ?",
		nullableString(coverPath), arxivID); err != nil {
		return nil, fmt.Errorf("setting cover for %s: %w", arxivID, err)
	}
	return d.GetPaper(arxivID)
}

// AllCiteKeys returns the set of cite keys currently in use across the
// library. Key allocation rebuilds this set before any batch that
// assigns new keys.
func (d *DB) AllCiteKeys() (map[string]bool, error) {
	rows, err := d.db.Query(
		"SELECT cite_key FROM papers WHERE cite_key IS NOT NULL AND cite_key != ''")
	if err != nil {
		return nil, fmt.Errorf("listing cite keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys[key] = true
	}
	return keys, rows.Err()
}

// ListUnsynced returns papers eligible for an "only unsynced" citation
// sync: not yet marked published, or never synced at all. A published
// paper that has been synced once stays out of this list even if its
// journal reference later changes upstream.
func (d *DB) ListUnsynced() ([]paper.Paper, error) {
	rows, err := d.db.Query(
		"SELECT " + selectPaperFields +
			" FROM papers WHERE is_published = 0 OR last_citation_sync IS NULL" +
			" ORDER BY added_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing unsynced papers: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// CountPapers returns the total number of papers.
func (d *DB) CountPapers() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// paperScanFields holds the scan targets for a paper row.
type paperScanFields struct {
	arxivID, title, authorsJSON, abstract, categoriesJSON   string
	published, updated, pdfURL, arxivURL                    string
	shelvesJSON, tagsJSON, status                           string
	starred                                                 int
	notes, coverImage                                       sql.NullString
	addedAt, bibtexSource                                   string
	bibtex, citeKey, doi, journalRef, adsBibcode, lastSync  sql.NullString
	isPublished                                             int
}

func (f *paperScanFields) dests() []any {
	return []any{
		&f.arxivID, &f.title, &f.authorsJSON, &f.abstract, &f.categoriesJSON,
		&f.published, &f.updated, &f.pdfURL, &f.arxivURL,
		&f.shelvesJSON, &f.tagsJSON, &f.status, &f.starred, &f.notes, &f.coverImage,
		&f.addedAt, &f.bibtex, &f.bibtexSource, &f.citeKey, &f.isPublished,
		&f.doi, &f.journalRef, &f.adsBibcode, &f.lastSync,
	}
}

func (f *paperScanFields) toPaper() (paper.Paper, error) {
	var authors, categories, shelves, tags []string
	if err := json.Unmarshal([]byte(f.authorsJSON), &authors); err != nil {
		return paper.Paper{}, fmt.Errorf("decoding authors for %s: %w", f.arxivID, err)
	}
	if err := json.Unmarshal([]byte(f.categoriesJSON), &categories); err != nil {
		return paper.Paper{}, fmt.Errorf("decoding categories for %s: %w", f.arxivID, err)
	}
	if err := json.Unmarshal([]byte(f.shelvesJSON), &shelves); err != nil {
		return paper.Paper{}, fmt.Errorf("decoding shelves for %s: %w", f.arxivID, err)
	}
	if err := json.Unmarshal([]byte(f.tagsJSON), &tags); err != nil {
		return paper.Paper{}, fmt.Errorf("decoding tags for %s: %w", f.arxivID, err)
	}

	p := paper.Paper{
		ArxivID:      f.arxivID,
		Title:        f.title,
		Authors:      authors,
		Abstract:     f.abstract,
		Categories:   categories,
		PDFURL:       f.pdfURL,
		ArxivURL:     f.arxivURL,
		Shelves:      shelves,
		Tags:         tags,
		Status:       paper.ReadingStatus(f.status),
		Starred:      f.starred != 0,
		Notes:        f.notes.String,
		CoverImage:   f.coverImage.String,
		Bibtex:       f.bibtex.String,
		BibtexSource: paper.BibtexSource(f.bibtexSource),
		CiteKey:      f.citeKey.String,
		IsPublished:  f.isPublished != 0,
		DOI:          f.doi.String,
		JournalRef:   f.journalRef.String,
		ADSBibcode:   f.adsBibcode.String,
	}

	var err error
	if p.Published, err = time.Parse(time.RFC3339, f.published); err != nil {
		return paper.Paper{}, fmt.Errorf("parsing published for %s: %w", f.arxivID, err)
	}
	if p.Updated, err = time.Parse(time.RFC3339, f.updated); err != nil {
		return paper.Paper{}, fmt.Errorf("parsing updated for %s: %w", f.arxivID, err)
	}
	if p.AddedAt, err = time.Parse(time.RFC3339, f.addedAt); err != nil {
		return paper.Paper{}, fmt.Errorf("parsing added_at for %s: %w", f.arxivID, err)
	}
	if f.lastSync.Valid {
		t, err := time.Parse(time.RFC3339, f.lastSync.String)
		if err != nil {
			return paper.Paper{}, fmt.Errorf("parsing last_citation_sync for %s: %w", f.arxivID, err)
		}
		p.LastCitationSync = &t
	}

	return p, nil
}

func scanPaper(row *sql.Row) (*paper.Paper, error) {
	var f paperScanFields
	if err := row.Scan(f.dests()...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p, err := f.toPaper()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPapers(rows *sql.Rows) ([]paper.Paper, error) {
	var papers []paper.Paper
	for rows.Next() {
		var f paperScanFields
		if err := rows.Scan(f.dests()...); err != nil {
			return nil, err
		}
		p, err := f.toPaper()
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// marshalStringList encodes a string slice as JSON, treating nil as empty.
func marshalStringList(list []string) string {
	if list == nil {
		list = []string{}
	}
	data, _ := json.Marshal(list)
	return string(data)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
