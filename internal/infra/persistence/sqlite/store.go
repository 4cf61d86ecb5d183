// Package sqlite implements a SeenStore on a single-file SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"limscore/pkg/domain"
)

// Store persists the processed-identifier set to one SQLite table. Save
// rewrites the whole table in a transaction so an interrupted run can never
// leave a partial set behind.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "limscore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS processed_projects (
		id TEXT PRIMARY KEY
	)`); err != nil {
		return nil, fmt.Errorf("create processed_projects table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load reads the full identifier set.
func (s *Store) Load(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM processed_projects`)
	if err != nil {
		return nil, fmt.Errorf("select processed_projects: %w", err)
	}
	defer func() { _ = rows.Close() }()
	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Save replaces the stored set with ids in one transaction.
func (s *Store) Save(ctx context.Context, ids map[string]struct{}) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM processed_projects`); err != nil {
		return fmt.Errorf("clear processed_projects: %w", err)
	}
	for id := range ids {
		if _, err := tx.ExecContext(ctx, `INSERT INTO processed_projects (id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("insert %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

var _ domain.SeenStore = (*Store)(nil)
