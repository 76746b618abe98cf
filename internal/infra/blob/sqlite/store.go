// Package sqlite implements the blob store on an embedded SQLite file: one
// row per object, payloads stored as JSON blobs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"balloons/internal/blob/core"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store persists blobs in a single `balloons` table.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) a SQLite-backed blob store at path.
func New(path string) (*Store, error) {
	if path == "" {
		path = "balloons.db"
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
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS balloons (
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (type, name)
	)`); err != nil {
		return nil, fmt.Errorf("create balloons table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverSQLite }

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Exists(ctx context.Context, key core.Key) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM balloons WHERE type = ? AND name = ?`, key.Type, key.Name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) ListNames(ctx context.Context, typeName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM balloons WHERE type = ? ORDER BY name`, typeName)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", typeName, err)
	}
	defer func() { _ = rows.Close() }()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) ListTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT type FROM balloons ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) Read(ctx context.Context, key core.Key) (map[string]any, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM balloons WHERE type = ? AND name = ?`, key.Type, key.Name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrNoBlob, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return fields, nil
}

func (s *Store) Write(ctx context.Context, key core.Key, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO balloons (type, name, payload) VALUES (?, ?, ?)
		 ON CONFLICT (type, name) DO UPDATE SET payload = excluded.payload`,
		key.Type, key.Name, payload); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
