// Package core defines the abstractions for blob storage backends keyed by
// (type, name) pairs and holding structured field documents.
package core

import (
	"context"
	"errors"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem represents the local filesystem implementation.
	DriverFilesystem Driver = "fs" // local filesystem (default, dev)
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory" // in-memory (tests)
	// DriverSQLite represents an embedded SQLite file implementation.
	DriverSQLite Driver = "sqlite" // embedded sqlite file
	// DriverPostgres represents a PostgreSQL server implementation.
	DriverPostgres Driver = "postgres" // PostgreSQL server
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3" // S3 / MinIO compatible
)

// Key addresses one stored object: the qualified name of its concrete type
// and its object name.
type Key struct {
	Type string
	Name string
}

func (k Key) String() string { return k.Type + ":" + k.Name }

// Store is the contract for blob backends. Payloads are structured field
// documents (the JSON object tree of a deflated balloon). Writes are durable
// before the call returns; no atomicity beyond last-write-wins is promised.
type Store interface {
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key Key) (bool, error)
	// ListNames enumerates the object names stored for a type without
	// loading any content.
	ListNames(ctx context.Context, typeName string) ([]string, error)
	// ListTypes enumerates the type names that have at least one blob.
	ListTypes(ctx context.Context) ([]string, error)
	// Read loads the structured field document stored under key.
	Read(ctx context.Context, key Key) (map[string]any, error)
	// Write stores a structured field document under key.
	Write(ctx context.Context, key Key, fields map[string]any) error
	// Driver identifies the backend implementation.
	Driver() Driver
}

// ErrNoBlob is returned by Read when no blob is stored under the key.
var ErrNoBlob = errors.New("blobstore: no such blob")
