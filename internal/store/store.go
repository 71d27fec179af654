// Package store caches the cleaned tree table in a local SQLite file.
// A warm store lets a re-render skip the download and cleaning stages
// entirely; the deterministic tree IDs make refreshes idempotent.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/paris-tree-census/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS trees (
	id           TEXT PRIMARY KEY,
	species      TEXT NOT NULL,
	genus        TEXT NOT NULL,
	common_name  TEXT NOT NULL DEFAULT '',
	cultivar     TEXT NOT NULL DEFAULT '',
	sector       TEXT NOT NULL DEFAULT '',
	site_type    TEXT NOT NULL DEFAULT '',
	street       TEXT NOT NULL DEFAULT '',
	girth_cm     REAL NOT NULL DEFAULT 0,
	height_m     REAL NOT NULL DEFAULT 0,
	stage        TEXT NOT NULL DEFAULT '',
	remarkable   INTEGER NOT NULL DEFAULT 0,
	size_class   TEXT,
	lat          REAL NOT NULL,
	lon          REAL NOT NULL,
	east         REAL NOT NULL,
	north        REAL NOT NULL,
	processed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trees_species ON trees(species);
CREATE INDEX IF NOT EXISTS idx_trees_street  ON trees(street);
`

// Store is the SQLite-backed cache of the cleaned analysis table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts cleaned trees. Existing IDs are left untouched (ON CONFLICT
// DO NOTHING). Returns the number of newly inserted rows.
func (s *Store) Save(ctx context.Context, trees []domain.Tree) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trees (
			id, species, genus, common_name, cultivar, sector, site_type,
			street, girth_cm, height_m, stage, remarkable, size_class,
			lat, lon, east, north, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range trees {
		var sizeClass sql.NullString
		if t.SizeClass != nil {
			sizeClass = sql.NullString{String: *t.SizeClass, Valid: true}
		}
		res, err := stmt.ExecContext(ctx,
			t.ID, t.Species, t.Genus, t.CommonName, t.Cultivar, t.Sector, t.SiteType,
			t.Street, t.GirthCm, t.HeightM, t.Stage, boolToInt(t.Remarkable), sizeClass,
			t.Geo.Lat, t.Geo.Lon, t.East, t.North, t.ProcessedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return 0, fmt.Errorf("insert tree %s: %w", t.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save: %w", err)
	}
	return inserted, nil
}

// Clear drops every cached row. A forced refresh clears before saving so
// trees removed from the portal export do not linger in the table.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM trees`); err != nil {
		return fmt.Errorf("clear trees: %w", err)
	}
	return nil
}

// Load reads the whole table back, ordered by ID for determinism.
func (s *Store) Load(ctx context.Context) ([]domain.Tree, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, species, genus, common_name, cultivar, sector, site_type,
		       street, girth_cm, height_m, stage, remarkable, size_class,
		       lat, lon, east, north, processed_at
		FROM trees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query trees: %w", err)
	}
	defer rows.Close()

	var trees []domain.Tree
	for rows.Next() {
		var (
			t           domain.Tree
			remarkable  int
			sizeClass   sql.NullString
			processedAt string
		)
		if err := rows.Scan(
			&t.ID, &t.Species, &t.Genus, &t.CommonName, &t.Cultivar, &t.Sector, &t.SiteType,
			&t.Street, &t.GirthCm, &t.HeightM, &t.Stage, &remarkable, &sizeClass,
			&t.Geo.Lat, &t.Geo.Lon, &t.East, &t.North, &processedAt,
		); err != nil {
			return nil, fmt.Errorf("scan tree: %w", err)
		}
		t.Remarkable = remarkable != 0
		if sizeClass.Valid {
			s := sizeClass.String
			t.SizeClass = &s
		}
		ts, err := time.Parse(time.RFC3339Nano, processedAt)
		if err != nil {
			return nil, fmt.Errorf("parse processed_at for %s: %w", t.ID, err)
		}
		t.ProcessedAt = ts
		trees = append(trees, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trees: %w", err)
	}
	return trees, nil
}

// Count returns the number of cached trees.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trees: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
