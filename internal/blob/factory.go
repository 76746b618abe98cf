package blob

import (
	"context"
	"fmt"
	"os"

	pgstore "balloons/internal/infra/blob/postgres"
	s3store "balloons/internal/infra/blob/s3"
)

// Open selects a blob.Store implementation using environment variables.
//
//	BALLOONS_BLOB_DRIVER: fs|memory|sqlite|postgres|s3 (default fs)
//	BALLOONS_BLOB_FS_ROOT: directory root when driver=fs (default ./balloondata)
//	BALLOONS_BLOB_SQLITE_PATH: file path when driver=sqlite (default balloons.db)
//	BALLOONS_BLOB_POSTGRES_DSN: DSN when driver=postgres
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("BALLOONS_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("BALLOONS_BLOB_FS_ROOT"))
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(os.Getenv("BALLOONS_BLOB_SQLITE_PATH"))
	case DriverPostgres:
		return pgstore.OpenFromEnv(ctx)
	case DriverS3:
		return s3store.OpenFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
