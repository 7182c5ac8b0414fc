package gridload

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pspoerri/lsgconv/internal/grid"
)

const schema = `
	CREATE TABLE IF NOT EXISTS grid_shift (
		point_id      INTEGER PRIMARY KEY,
		east_shift    DOUBLE NOT NULL,
		north_shift   DOUBLE NOT NULL,
		height_shift  DOUBLE NOT NULL
	);
	CREATE TABLE IF NOT EXISTS grid_meta (
		key           TEXT PRIMARY KEY,
		value         TEXT NOT NULL
	);
`

// Store keeps correction grid records in a SQLite database, which loads far
// faster than re-parsing the CSV on every start.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the SQLite database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("gridload: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("gridload: creating schema in %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Import writes recs in a single transaction. Existing point ids are replaced.
func (s *Store) Import(ctx context.Context, recs []grid.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("gridload: begin import: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO grid_shift (point_id, east_shift, north_shift, height_shift) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("gridload: prepare import: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err = stmt.ExecContext(ctx, r.PointID, r.East, r.North, r.Height); err != nil {
			return fmt.Errorf("gridload: import point %d: %w", r.PointID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("gridload: commit import: %w", err)
	}
	return nil
}

// Records returns every stored record ordered by point id.
func (s *Store) Records(ctx context.Context) ([]grid.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT point_id, east_shift, north_shift, height_shift FROM grid_shift ORDER BY point_id`)
	if err != nil {
		return nil, fmt.Errorf("gridload: query records: %w", err)
	}
	defer rows.Close()

	var recs []grid.Record
	for rows.Next() {
		var r grid.Record
		if err := rows.Scan(&r.PointID, &r.East, &r.North, &r.Height); err != nil {
			return nil, fmt.Errorf("gridload: scan record: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gridload: iterate records: %w", err)
	}
	return recs, nil
}

// SetMeta records a key/value pair alongside the grid, such as its source file.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO grid_meta (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("gridload: set meta %s: %w", key, err)
	}
	return nil
}

// Meta returns all stored key/value pairs.
func (s *Store) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM grid_meta`)
	if err != nil {
		return nil, fmt.Errorf("gridload: query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("gridload: scan meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
