// Package postgres implements the blob store on a PostgreSQL server,
// applying its DDL on startup and storing payloads as JSONB.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"balloons/internal/blob/core"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/balloons?sslmode=disable"
)

// Store persists blobs in a single `balloons` table.
type Store struct {
	db *sql.DB
}

// New opens a Postgres-backed blob store using the provided DSN (falls back
// to defaultDSN), verifies connectivity, and ensures the table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
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
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS balloons (
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		payload JSONB NOT NULL,
		PRIMARY KEY (type, name)
	)`); err != nil {
		return nil, fmt.Errorf("create balloons table: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenFromEnv constructs a store from BALLOONS_BLOB_POSTGRES_DSN.
func OpenFromEnv(ctx context.Context) (*Store, error) {
	return New(ctx, os.Getenv("BALLOONS_BLOB_POSTGRES_DSN"))
}

func (s *Store) Driver() core.Driver { return core.DriverPostgres }

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Exists(ctx context.Context, key core.Key) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM balloons WHERE type = $1 AND name = $2`, key.Type, key.Name).Scan(&one)
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
		`SELECT name FROM balloons WHERE type = $1 ORDER BY name`, typeName)
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
		`SELECT payload FROM balloons WHERE type = $1 AND name = $2`, key.Type, key.Name).Scan(&payload)
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
		`INSERT INTO balloons (type, name, payload) VALUES ($1, $2, $3)
		 ON CONFLICT (type, name) DO UPDATE SET payload = excluded.payload`,
		key.Type, key.Name, payload); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
