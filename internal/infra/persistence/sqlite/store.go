// Package sqlite stores documents as rows of an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"innkeeper/internal/document"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ document.Backend = (*Store)(nil)

const defaultPath = "innkeeper.db"

// Store keeps one row per document in a single table.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the sqlite file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers; sqlite rejects concurrent ones anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{db: db}, nil
}

// Driver returns the backend driver identifier.
func (s *Store) Driver() document.Driver { return document.DriverSQLite }

// Read returns the stored payload or document.ErrNotExist.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, document.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", name, err)
	}
	return payload, nil
}

// Write upserts the payload.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents(name, payload) VALUES(?, ?) ON CONFLICT(name) DO UPDATE SET payload = excluded.payload`,
		name, data); err != nil {
		return fmt.Errorf("upsert %s: %w", name, err)
	}
	return nil
}

// Delete removes the row if present.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
