package world

import (
	"context"
	"fmt"

	"balloons/internal/blob"
	"balloons/internal/codec"
	"balloons/pkg/balloon"
)

// schemaTable restricts type-name resolution to the world's schema: blobs may
// only reference types the world was declared over.
type schemaTable struct {
	registry *balloon.Registry
	schema   *balloon.Schema
}

func (st schemaTable) Lookup(name string) (*balloon.Type, bool) {
	t, ok := st.registry.Lookup(name)
	if !ok || !st.schema.Contains(t) {
		return nil, false
	}
	return t, true
}

// Options configures world creation. Zero values default every root to the
// registry's universal root type.
type Options struct {
	// NamespaceTypes are the ancestors partitioning the name space.
	NamespaceTypes []*balloon.Type
	// TopTypes seed the dependency closure that becomes the full type set.
	TopTypes []*balloon.Type
	// TopNameableTypes seed the subtype closure that becomes the nameable set.
	TopNameableTypes []*balloon.Type
	// Metrics receives store counters when non-nil.
	Metrics *Metrics
	// Audit receives load/track entries when non-nil.
	Audit AuditRecorder
}

// worldState bundles what every specialized store of one world shares: the
// codec pair, the recursive-track guard, and the observability sinks.
type worldState struct {
	inflator *codec.Inflator
	deflator *codec.Deflator
	dyn      *dynamicTypes
	inflight map[string]struct{}
	metrics  *Metrics
	auditor  AuditRecorder
}

func (ws *worldState) audit(ctx context.Context, action, typeName, name string) {
	if ws.auditor == nil {
		return
	}
	ws.auditor.Record(ctx, newAuditEntry(action, typeName, name))
}

// World is a closed (read-only) composition of per-type stores, the dynamic
// type registry, and the codec, bound to a schema. Worlds are immutable
// snapshots: Populate layers a fresh world over this one instead of mutating
// it.
type World struct {
	registry *balloon.Registry
	schema   *balloon.Schema
	stores   map[*balloon.Type]*specializedStore
	dyn      *dynamicTypes
	state    *worldState

	metrics *Metrics
	auditor AuditRecorder
}

// NewClosed validates the schema computed from opts against the registry and
// returns an empty closed world: every nameable type has a store with no
// names. Schema violations fail here, before any I/O.
func NewClosed(reg *balloon.Registry, opts Options) (*World, error) {
	schema, err := balloon.BuildSchema(reg, opts.NamespaceTypes, opts.TopTypes, opts.TopNameableTypes)
	if err != nil {
		return nil, err
	}
	w := &World{
		registry: reg,
		schema:   schema,
		metrics:  opts.Metrics,
		auditor:  opts.Audit,
	}
	w.build(nil, nil)
	return w, nil
}

// Schema returns the world's schema.
func (w *World) Schema() *balloon.Schema { return w.schema }

// build wires stores, codec, and the dynamic registry, layering over baseline
// when non-nil. Stores scan no names here; scanning happens in populate.
func (w *World) build(baseline *World, blobs blob.Store) {
	providers := make(map[*balloon.Type]codec.Provider)
	trackers := make(map[*balloon.Type]codec.Tracker)
	w.state = &worldState{
		inflator: codec.NewInflator(schemaTable{registry: w.registry, schema: w.schema}, providers),
		deflator: codec.NewDeflator(trackers),
		inflight: make(map[string]struct{}),
		metrics:  w.metrics,
		auditor:  w.auditor,
	}

	var baselineDyn TypeProvider
	if baseline != nil {
		baselineDyn = baseline.dyn
	}
	w.dyn = newDynamicTypes(w.schema, baselineDyn)
	w.state.dyn = w.dyn

	w.stores = make(map[*balloon.Type]*specializedStore)
	for _, t := range w.schema.NameableTypes() {
		var base *specializedStore
		if baseline != nil {
			base = baseline.stores[t]
		}
		s := &specializedStore{
			typ:      t,
			blobs:    blobs,
			names:    make(map[string]struct{}),
			cache:    make(map[string]*balloon.Balloon),
			baseline: base,
			world:    w.state,
		}
		w.stores[t] = s
		providers[t] = s
		trackers[t] = s
	}
}

// Populate scans an existing blob store location and returns a new closed
// world layered over this one as its baseline: names are discovered per type
// without loading content, and the dynamic registry is rebuilt by re-tracking
// every discovered pair.
func (w *World) Populate(ctx context.Context, blobs blob.Store) (*World, error) {
	nw := &World{
		registry: w.registry,
		schema:   w.schema,
		metrics:  w.metrics,
		auditor:  w.auditor,
	}
	nw.build(w, blobs)
	if err := nw.scan(ctx); err != nil {
		return nil, err
	}
	return nw, nil
}

func (w *World) scan(ctx context.Context) error {
	for _, t := range w.schema.NameableTypes() {
		s := w.stores[t]
		names, err := s.blobs.ListNames(ctx, t.Name())
		if err != nil {
			return fmt.Errorf("scan %s: %w", t, err)
		}
		for _, name := range names {
			s.names[name] = struct{}{}
		}
	}
	// seed the dynamic registry only after every store scanned, so cross-type
	// collisions surface regardless of scan order
	for _, t := range w.schema.NameableTypes() {
		for name := range w.stores[t].names {
			if err := w.dyn.track(name, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// Open is Populate plus trackers: the returned world additionally accepts new
// balloons via Track, persisting them to the same location.
func (w *World) Open(ctx context.Context, blobs blob.Store) (*OpenWorld, error) {
	nw, err := w.Populate(ctx, blobs)
	if err != nil {
		return nil, err
	}
	return &OpenWorld{World: nw}, nil
}

// Balloonist returns a read-only view over the subtypes of bound. The bound
// type must be inside the schema and under some namespace type.
func (w *World) Balloonist(bound *balloon.Type) (*Balloonist, error) {
	return w.balloonist(bound, false)
}

func (w *World) balloonist(bound *balloon.Type, tracking bool) (*Balloonist, error) {
	if !w.schema.Contains(bound) {
		return nil, fmt.Errorf("type %s is outside the world schema", bound)
	}
	if len(w.schema.NamespaceAncestors(bound)) == 0 {
		return nil, fmt.Errorf("type %s has no namespace ancestor", bound)
	}
	stores := make(map[*balloon.Type]*specializedStore)
	for t, s := range w.stores {
		if t.IsSubtypeOf(bound) {
			stores[t] = s
		}
	}
	return &Balloonist{
		bound:    bound,
		dyn:      w.dyn,
		stores:   stores,
		tracking: tracking,
	}, nil
}

// OpenWorld is a populated world that additionally accepts new balloons.
type OpenWorld struct {
	*World
}

// Track registers a named balloon under its concrete type's store, which
// records the (name, type) pair in the dynamic registry and persists the
// balloon on first sight. Tracking is idempotent.
func (ow *OpenWorld) Track(ctx context.Context, b *balloon.Balloon) error {
	if !b.IsNamed() {
		return fmt.Errorf("cannot track anonymous %s", b.Type())
	}
	s, ok := ow.stores[b.Type()]
	if !ok {
		return fmt.Errorf("type %s is not nameable in the world schema", b.Type())
	}
	return s.Track(ctx, b)
}

// Balloonist returns a tracking view over the subtypes of bound.
func (ow *OpenWorld) Balloonist(bound *balloon.Type) (*Balloonist, error) {
	return ow.balloonist(bound, true)
}
