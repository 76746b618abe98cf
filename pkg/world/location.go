package world

import (
	"context"

	"balloons/internal/blob"
)

// Location helpers: the blob.Store contract is internal, so external callers
// open worlds against a directory or the BALLOONS_BLOB_* environment instead
// of constructing stores themselves.

// PopulateDir populates a closed world from a filesystem location.
func (w *World) PopulateDir(ctx context.Context, root string) (*World, error) {
	s, err := blob.NewFilesystem(root)
	if err != nil {
		return nil, err
	}
	return w.Populate(ctx, s)
}

// OpenDir opens a growable world over a filesystem location.
func (w *World) OpenDir(ctx context.Context, root string) (*OpenWorld, error) {
	s, err := blob.NewFilesystem(root)
	if err != nil {
		return nil, err
	}
	return w.Open(ctx, s)
}

// PopulateFromEnv populates a closed world from the blob driver selected by
// the BALLOONS_BLOB_* environment variables.
func (w *World) PopulateFromEnv(ctx context.Context) (*World, error) {
	s, err := blob.Open(ctx)
	if err != nil {
		return nil, err
	}
	return w.Populate(ctx, s)
}

// OpenFromEnv opens a growable world from the blob driver selected by the
// BALLOONS_BLOB_* environment variables.
func (w *World) OpenFromEnv(ctx context.Context) (*OpenWorld, error) {
	s, err := blob.Open(ctx)
	if err != nil {
		return nil, err
	}
	return w.Open(ctx, s)
}
