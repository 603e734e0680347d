// Package cache persists the last fetched classification collections to a
// local SQLite database. The tree renders from the cache instantly on
// startup and in offline mode; after every successful refresh the snapshot
// is replaced wholesale. The cache is never authoritative: writes always go
// to the API, and the cache only changes when a refresh lands.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

const (
	kindCategory    = "category"
	kindSubCategory = "subcategory"
	kindItemGroup   = "itemgroup"

	metaFetchedAt = "fetched_at"
)

// Store is a snapshot cache backed by a single SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			kind     TEXT NOT NULL,
			position INTEGER NOT NULL,
			payload  TEXT NOT NULL,
			PRIMARY KEY (kind, position)
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating snapshot schema: %w", err)
		}
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces the cached snapshot with cols. Positions record the API's
// collection order so a later Load reproduces it exactly.
func (s *Store) Save(cols model.Collections) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entities`); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	insert, err := tx.Prepare(`INSERT INTO entities (kind, position, payload) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer insert.Close()

	put := func(kind string, position int, v any) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s row: %w", kind, err)
		}
		_, err = insert.Exec(kind, position, string(payload))
		return err
	}

	for i, c := range cols.Categories {
		if err := put(kindCategory, i, c); err != nil {
			return err
		}
	}
	for i, sc := range cols.SubCategories {
		if err := put(kindSubCategory, i, sc); err != nil {
			return err
		}
	}
	for i, g := range cols.ItemGroups {
		if err := put(kindItemGroup, i, g); err != nil {
			return err
		}
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaFetchedAt, fetchedAt,
	); err != nil {
		return fmt.Errorf("recording snapshot time: %w", err)
	}

	return tx.Commit()
}

// Load reads the cached snapshot and when it was fetched. A missing or
// empty snapshot returns empty collections and a zero time, not an error.
func (s *Store) Load() (model.Collections, time.Time, error) {
	var cols model.Collections

	rows, err := s.db.Query(`SELECT kind, payload FROM entities ORDER BY kind, position`)
	if err != nil {
		return cols, time.Time{}, fmt.Errorf("reading snapshot: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return cols, time.Time{}, fmt.Errorf("scanning snapshot row: %w", err)
		}
		switch kind {
		case kindCategory:
			var c model.Category
			if err := json.Unmarshal([]byte(payload), &c); err != nil {
				return cols, time.Time{}, fmt.Errorf("decoding category row: %w", err)
			}
			cols.Categories = append(cols.Categories, c)
		case kindSubCategory:
			var sc model.SubCategory
			if err := json.Unmarshal([]byte(payload), &sc); err != nil {
				return cols, time.Time{}, fmt.Errorf("decoding subcategory row: %w", err)
			}
			cols.SubCategories = append(cols.SubCategories, sc)
		case kindItemGroup:
			var g model.ItemGroup
			if err := json.Unmarshal([]byte(payload), &g); err != nil {
				return cols, time.Time{}, fmt.Errorf("decoding item group row: %w", err)
			}
			cols.ItemGroups = append(cols.ItemGroups, g)
		}
	}
	if err := rows.Err(); err != nil {
		return cols, time.Time{}, fmt.Errorf("iterating snapshot rows: %w", err)
	}

	var fetchedAt time.Time
	var raw string
	err = s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaFetchedAt).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// First run, nothing cached yet.
	case err != nil:
		return cols, time.Time{}, fmt.Errorf("reading snapshot time: %w", err)
	default:
		if t, perr := time.Parse(time.RFC3339, raw); perr == nil {
			fetchedAt = t
		}
	}

	return cols, fetchedAt, nil
}
