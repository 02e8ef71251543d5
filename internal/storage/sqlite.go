// Package storage persists the paper library in SQLite.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			arxiv_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors_json TEXT NOT NULL,
			abstract TEXT NOT NULL,
			categories_json TEXT NOT NULL,
			published TEXT NOT NULL,
			updated TEXT NOT NULL,
			pdf_url TEXT NOT NULL,
			arxiv_url TEXT NOT NULL,
			shelves_json TEXT NOT NULL DEFAULT '[]',
			tags_json TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT '',
			starred INTEGER NOT NULL DEFAULT 0,
			notes TEXT,
			cover_image TEXT,
			added_at TEXT NOT NULL,
			bibtex TEXT,
			bibtex_source TEXT NOT NULL DEFAULT 'arxiv',
			cite_key TEXT,
			is_published INTEGER NOT NULL DEFAULT 0,
			doi TEXT,
			journal_ref TEXT,
			ads_bibcode TEXT,
			last_citation_sync TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_papers_cite_key ON papers(cite_key)
			WHERE cite_key IS NOT NULL AND cite_key != '';

		CREATE TABLE IF NOT EXISTS shelves (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			description TEXT,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tags (
			name TEXT PRIMARY KEY,
			color TEXT
		);

		-- Full-text search over papers, kept in sync by triggers
		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			arxiv_id,
			title,
			authors,
			abstract,
			notes
		);

		CREATE TRIGGER IF NOT EXISTS papers_ai AFTER INSERT ON papers BEGIN
			INSERT INTO papers_fts(arxiv_id, title, authors, abstract, notes)
			VALUES (new.arxiv_id, new.title, new.authors_json, new.abstract, new.notes);
		END;

		CREATE TRIGGER IF NOT EXISTS papers_ad AFTER DELETE ON papers BEGIN
			DELETE FROM papers_fts WHERE arxiv_id = old.arxiv_id;
		END;

		CREATE TRIGGER IF NOT EXISTS papers_au AFTER UPDATE ON papers BEGIN
			DELETE FROM papers_fts WHERE arxiv_id = old.arxiv_id;
			INSERT INTO papers_fts(arxiv_id, title, authors, abstract, notes)
			VALUES (new.arxiv_id, new.title, new.authors_json, new.abstract, new.notes);
		END;
	`

	_, err := db.Exec(schema)
	return err
}

// nullableString converts a possibly-empty Go string to a SQL value,
// storing empty strings as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
