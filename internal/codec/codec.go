// Package codec converts between in-memory balloon values and the structured
// (JSON object tree) wire form. Named balloons never inline: they serialize
// as "Type:name" reference strings routed through per-type providers and
// trackers, so the codec recurses through the store layer for the reference
// graph and only encodes value content itself.
package codec

import (
	"context"

	"balloons/pkg/balloon"
)

// Provider supplies named balloons of one concrete type.
type Provider interface {
	// Type returns the concrete type the provider manages.
	Type() *balloon.Type
	// Get returns the named balloon, materializing it from the store on a
	// cache miss.
	Get(ctx context.Context, name string) (*balloon.Balloon, error)
}

// Tracker accepts named balloons of one concrete type, persisting them on
// first sight.
type Tracker interface {
	// Type returns the concrete type the tracker manages.
	Type() *balloon.Type
	// Track registers the balloon, writing it to the store if new.
	Track(ctx context.Context, b *balloon.Balloon) error
}

// TypeTable resolves qualified type names against a schema.
type TypeTable interface {
	Lookup(name string) (*balloon.Type, bool)
}
