package blob

import (
	"context"

	fsstore "balloons/internal/infra/blob/fs"
	memorystore "balloons/internal/infra/blob/memory"
	pgstore "balloons/internal/infra/blob/postgres"
	s3store "balloons/internal/infra/blob/s3"
	sqlitestore "balloons/internal/infra/blob/sqlite"
)

// NewFilesystem constructs a filesystem-backed blob.Store rooted at the
// provided path. Returns blob.Store to encourage call sites to depend on the
// interface instead of concrete implementations.
func NewFilesystem(root string) (Store, error) {
	return fsstore.New(root)
}

// NewMemory returns an in-memory blob.Store suitable for tests.
func NewMemory() Store { return memorystore.New() }

// NewSQLite constructs a sqlite-backed blob.Store at the given file path.
func NewSQLite(path string) (Store, error) {
	return sqlitestore.New(path)
}

// NewPostgres constructs a Postgres-backed blob.Store from the given DSN.
func NewPostgres(ctx context.Context, dsn string) (Store, error) {
	return pgstore.New(ctx, dsn)
}

// S3Config re-exports the infra S3 configuration type.
type S3Config = s3store.Config

// NewS3 constructs an S3-backed blob.Store from the provided configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return s3store.New(ctx, cfg)
}
