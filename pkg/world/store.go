package world

import (
	"context"
	"fmt"

	"balloons/internal/blob"
	"balloons/pkg/balloon"
)

// specializedStore is the cache-backed, blob-backed repository for one
// concrete nameable type. Known names are scanned from the blob store at
// construction without loading content; instances materialize lazily and are
// cached so each name resolves to at most one in-memory balloon.
type specializedStore struct {
	typ      *balloon.Type
	blobs    blob.Store // nil for the empty stores of an unpopulated world
	names    map[string]struct{}
	cache    map[string]*balloon.Balloon
	baseline *specializedStore // previous layer for the same type, or nil

	world *worldState
}

func (s *specializedStore) Type() *balloon.Type { return s.typ }

// has reports whether the name is known to this layer or any baseline.
func (s *specializedStore) has(name string) bool {
	for cur := s; cur != nil; cur = cur.baseline {
		if _, ok := cur.names[name]; ok {
			return true
		}
		if _, ok := cur.cache[name]; ok {
			return true
		}
	}
	return false
}

// Names returns the union of known names across the baseline chain.
func (s *specializedStore) Names() map[string]struct{} {
	out := make(map[string]struct{})
	for cur := s; cur != nil; cur = cur.baseline {
		for name := range cur.names {
			out[name] = struct{}{}
		}
		for name := range cur.cache {
			out[name] = struct{}{}
		}
	}
	return out
}

// Get returns the named balloon. Lookup order is baseline, then cache, then
// the blob store; an object promoted into an overlay still canonically lives
// in its baseline.
func (s *specializedStore) Get(ctx context.Context, name string) (*balloon.Balloon, error) {
	if s.baseline != nil && s.baseline.has(name) {
		return s.baseline.Get(ctx, name)
	}
	if b, ok := s.cache[name]; ok {
		s.world.metrics.observeCacheHit(s.typ.Name())
		return b, nil
	}
	if _, ok := s.names[name]; !ok {
		return nil, fmt.Errorf("%w: %s %q", balloon.ErrNotFound, s.typ, name)
	}
	b, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache[name] = b
	s.world.metrics.observeLoad(s.typ.Name())
	s.world.audit(ctx, "load", s.typ.Name(), name)
	return b, nil
}

// load materializes one blob. The inflight guard catches reference cycles in
// stored data, which would otherwise recurse through the inflator forever.
func (s *specializedStore) load(ctx context.Context, name string) (*balloon.Balloon, error) {
	key := s.typ.Name() + ":" + name
	if _, busy := s.world.inflight[key]; busy {
		return nil, &balloon.CycleError{Type: s.typ.Name(), Name: name}
	}
	s.world.inflight[key] = struct{}{}
	defer delete(s.world.inflight, key)

	doc, err := s.blobs.Read(ctx, blob.Key{Type: s.typ.Name(), Name: name})
	if err != nil {
		return nil, err
	}
	return s.world.inflator.InflateBalloon(ctx, s.typ, name, doc)
}

// Track registers a named balloon, persisting it on first sight. The type
// must match the store's declared type exactly, not via subtyping. Conflict
// precedence is baseline, then cache, then disk:
//
//	identical instance        -> no-op
//	equal structure           -> coalesce, the canonical instance wins
//	different structure       -> fatal conflict carrying both renderings
func (s *specializedStore) Track(ctx context.Context, b *balloon.Balloon) error {
	if b.Type() != s.typ {
		return fmt.Errorf("store for %s cannot track %s", s.typ, b.Type())
	}
	if !b.IsNamed() {
		return fmt.Errorf("cannot track anonymous %s", s.typ)
	}
	name := b.Name()

	// record the (name, type) pair before touching storage: a namespace
	// collision must surface before anything is persisted, and nested
	// references tracked through the deflator pass through here too
	if err := s.world.dyn.track(name, s.typ); err != nil {
		return err
	}

	if s.baseline != nil && s.baseline.has(name) {
		existing, err := s.baseline.Get(ctx, name)
		if err != nil {
			return err
		}
		return s.reconcile(existing, b)
	}
	if existing, ok := s.cache[name]; ok {
		return s.reconcile(existing, b)
	}
	if _, ok := s.names[name]; ok {
		// known on disk but never materialized: load, compare, and adopt
		// the incoming instance when the two constructions agree
		existing, err := s.load(ctx, name)
		if err != nil {
			return err
		}
		if !existing.EqualStructure(b) {
			return s.conflict(existing, b)
		}
		s.cache[name] = b
		return nil
	}

	return s.persist(ctx, b)
}

func (s *specializedStore) reconcile(existing, incoming *balloon.Balloon) error {
	if existing.Identical(incoming) || existing.EqualStructure(incoming) {
		return nil
	}
	return s.conflict(existing, incoming)
}

func (s *specializedStore) conflict(existing, incoming *balloon.Balloon) error {
	s.world.metrics.observeConflict(s.typ.Name())
	return &balloon.ConflictError{
		Type:     s.typ.Name(),
		Name:     incoming.Name(),
		Existing: existing.String(),
		Incoming: incoming.String(),
	}
}

// persist writes a brand new balloon: nested named references are tracked
// first (the deflator routes them through their own stores), so references
// are always durable before the referencing blob.
func (s *specializedStore) persist(ctx context.Context, b *balloon.Balloon) error {
	key := s.typ.Name() + ":" + b.Name()
	if _, busy := s.world.inflight[key]; busy {
		return &balloon.CycleError{Type: s.typ.Name(), Name: b.Name()}
	}
	s.world.inflight[key] = struct{}{}
	defer delete(s.world.inflight, key)

	doc, err := s.world.deflator.DeflateFields(ctx, b)
	if err != nil {
		return err
	}
	if err := s.blobs.Write(ctx, blob.Key{Type: s.typ.Name(), Name: b.Name()}, doc); err != nil {
		return err
	}
	s.names[b.Name()] = struct{}{}
	s.cache[b.Name()] = b
	s.world.metrics.observeWrite(s.typ.Name())
	s.world.audit(ctx, "track", s.typ.Name(), b.Name())
	return nil
}
