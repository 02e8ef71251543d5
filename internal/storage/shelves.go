package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/refsync/refsync/internal/paper"
)

// ErrShelfExists is returned when creating a shelf whose name is taken.
var ErrShelfExists = errors.New("shelf already exists")

// CreateShelf creates a named shelf and returns it. Shelf names are
// unique; creating a duplicate returns ErrShelfExists.
func (d *DB) CreateShelf(name, description string) (*paper.Shelf, error) {
	shelf := paper.Shelf{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := d.db.Exec(
		"INSERT INTO shelves (id, name, description, created_at) VALUES (?, ?, ?, ?)",
		shelf.ID, shelf.Name, nullableString(shelf.Description),
		shelf.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrShelfExists
		}
		return nil, fmt.Errorf("creating shelf %q: %w", name, err)
	}
	return &shelf, nil
}

// GetShelfByName looks up a shelf by its name. Returns nil if not found.
func (d *DB) GetShelfByName(name string) (*paper.Shelf, error) {
	row := d.db.QueryRow(
		"SELECT id, name, description, created_at FROM shelves WHERE name = ?", name)
	shelf, err := scanShelf(row)
	if err != nil || shelf == nil {
		return shelf, err
	}
	if shelf.PaperCount, err = d.countShelfPapers(shelf.Name); err != nil {
		return nil, err
	}
	return shelf, nil
}

// ListShelves returns all shelves with their paper counts, ordered by name.
func (d *DB) ListShelves() ([]paper.Shelf, error) {
	rows, err := d.db.Query(
		"SELECT id, name, description, created_at FROM shelves ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing shelves: %w", err)
	}
	defer rows.Close()

	var shelves []paper.Shelf
	for rows.Next() {
		var id, name, createdAt string
		var description sql.NullString
		if err := rows.Scan(&id, &name, &description, &createdAt); err != nil {
			return nil, err
		}
		created, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at for shelf %q: %w", name, err)
		}
		shelves = append(shelves, paper.Shelf{
			ID:          id,
			Name:        name,
			Description: description.String,
			CreatedAt:   created,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range shelves {
		if shelves[i].PaperCount, err = d.countShelfPapers(shelves[i].Name); err != nil {
			return nil, err
		}
	}
	return shelves, nil
}

// DeleteShelf removes a shelf and drops it from every paper's shelf
// list. Returns true if the shelf existed.
func (d *DB) DeleteShelf(name string) (bool, error) {
	res, err := d.db.Exec("DELETE FROM shelves WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("deleting shelf %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil || n == 0 {
		return false, err
	}

	if err := d.removeFromStringList("shelves_json", name); err != nil {
		return true, err
	}
	return true, nil
}

// countShelfPapers counts papers whose shelf list contains the name.
func (d *DB) countShelfPapers(name string) (int, error) {
	var count int
	err := d.db.QueryRow(
		"SELECT COUNT(*) FROM papers WHERE shelves_json LIKE ?",
		`%"`+name+`"%`).Scan(&count)
	return count, err
}

func scanShelf(row *sql.Row) (*paper.Shelf, error) {
	var id, name, createdAt string
	var description sql.NullString
	if err := row.Scan(&id, &name, &description, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at for shelf %q: %w", name, err)
	}
	return &paper.Shelf{
		ID:          id,
		Name:        name,
		Description: description.String,
		CreatedAt:   created,
	}, nil
}
