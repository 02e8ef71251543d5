package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/refsync/refsync/internal/paper"
)

// SetTagColor records a display color for a tag, creating the tag row
// if needed.
func (d *DB) SetTagColor(name, color string) error {
	_, err := d.db.Exec(`
		INSERT INTO tags (name, color) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET color = excluded.color
	`, name, nullableString(color))
	if err != nil {
		return fmt.Errorf("setting color for tag %q: %w", name, err)
	}
	return nil
}

// ListTags returns every tag in use, with counts. Tags appear here when
// attached to a paper even if no color was ever set for them.
func (d *DB) ListTags() ([]paper.Tag, error) {
	counts, err := d.tagCounts()
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query("SELECT name, color FROM tags")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	colors := make(map[string]string)
	for rows.Next() {
		var name string
		var color sql.NullString
		if err := rows.Scan(&name, &color); err != nil {
			return nil, err
		}
		colors[name] = color.String
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(counts)+len(colors))
	for name := range counts {
		names[name] = true
	}
	for name := range colors {
		names[name] = true
	}

	tags := make([]paper.Tag, 0, len(names))
	for name := range names {
		tags = append(tags, paper.Tag{
			Name:       name,
			Color:      colors[name],
			PaperCount: counts[name],
		})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// DeleteTag removes a tag's color entry and drops the tag from every
// paper. Returns true if any paper or color row referenced it.
func (d *DB) DeleteTag(name string) (bool, error) {
	res, err := d.db.Exec("DELETE FROM tags WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("deleting tag %q: %w", name, err)
	}
	deleted, _ := res.RowsAffected()

	var inUse int
	if err := d.db.QueryRow(
		"SELECT COUNT(*) FROM papers WHERE tags_json LIKE ?",
		`%"`+name+`"%`).Scan(&inUse); err != nil {
		return deleted > 0, err
	}
	if inUse > 0 {
		if err := d.removeFromStringList("tags_json", name); err != nil {
			return true, err
		}
		return true, nil
	}
	return deleted > 0, nil
}

// tagCounts tallies how many papers carry each tag.
func (d *DB) tagCounts() (map[string]int, error) {
	rows, err := d.db.Query("SELECT tags_json FROM papers WHERE tags_json != '[]'")
	if err != nil {
		return nil, fmt.Errorf("counting tags: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tagsJSON string
		if err := rows.Scan(&tagsJSON); err != nil {
			return nil, err
		}
		var tags []string
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
		for _, tag := range tags {
			counts[tag]++
		}
	}
	return counts, rows.Err()
}

// removeFromStringList drops a value from the named JSON list column on
// every paper that contains it.
func (d *DB) removeFromStringList(column, value string) error {
	rows, err := d.db.Query(fmt.Sprintf(
		"SELECT arxiv_id, %s FROM papers WHERE %s LIKE ?", column, column),
		`%"`+value+`"%`)
	if err != nil {
		return fmt.Errorf("finding papers with %s %q: %w", column, value, err)
	}

	type pending struct {
		arxivID string
		list    []string
	}
	var updates []pending
	for rows.Next() {
		var arxivID, listJSON string
		if err := rows.Scan(&arxivID, &listJSON); err != nil {
			rows.Close()
			return err
		}
		var list []string
		if err := json.Unmarshal([]byte(listJSON), &list); err != nil {
			rows.Close()
			return fmt.Errorf("decoding %s for %s: %w", column, arxivID, err)
		}
		filtered := list[:0]
		for _, item := range list {
			if item != value {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) != len(list) {
			updates = append(updates, pending{arxivID, filtered})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, u := range updates {
		query := fmt.Sprintf("UPDATE papers SET %s = ? WHERE arxiv_id = ?", column)
		if _, err := d.db.Exec(query, marshalStringList(u.list), u.arxivID); err != nil {
			return fmt.Errorf("removing %s %q from %s: %w", column, value, u.arxivID, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether an error came from a UNIQUE
// constraint. The sqlite driver wraps these without a typed error, so
// this matches on message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
