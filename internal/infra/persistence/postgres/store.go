// Package postgres implements a SeenStore on Postgres, for deployments where
// several automation hosts share one processed-identifier set.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"limscore/pkg/domain"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/limscore?sslmode=disable"
)

// Store persists the processed-identifier set to a Postgres table with
// full-rewrite Save semantics matching the sqlite store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to the local default) and ensures the table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	ddl := `CREATE TABLE IF NOT EXISTS processed_projects (
		id TEXT PRIMARY KEY
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure processed_projects table: %w", err)
	}
	return &Store{db: db}, nil
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
		if _, err := tx.ExecContext(ctx, `INSERT INTO processed_projects (id) VALUES ($1)`, id); err != nil {
			return fmt.Errorf("insert %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

var _ domain.SeenStore = (*Store)(nil)
