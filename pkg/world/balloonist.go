package world

import (
	"context"
	"fmt"
	"sort"

	"balloons/pkg/balloon"
)

// Balloonist is a view over the named balloons of one static type bound,
// subtypes included. It resolves a name to its concrete type through the
// dynamic registry and delegates to that type's specialized store. Views from
// an open world additionally accept new balloons.
type Balloonist struct {
	bound    *balloon.Type
	dyn      *dynamicTypes
	stores   map[*balloon.Type]*specializedStore
	tracking bool
}

// Bound returns the static type the view is scoped to.
func (bl *Balloonist) Bound() *balloon.Type { return bl.bound }

// Get returns the named balloon with the given name within the bound.
func (bl *Balloonist) Get(ctx context.Context, name string) (*balloon.Balloon, error) {
	t, err := bl.dyn.TypeOf(name, bl.bound)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s %q", balloon.ErrNotFound, bl.bound, name)
	}
	s, ok := bl.stores[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", balloon.ErrNotFound, bl.bound, name)
	}
	return s.Get(ctx, name)
}

// Names returns every known name across the scoped stores, sorted.
func (bl *Balloonist) Names() []string {
	set := make(map[string]struct{})
	for _, s := range bl.stores {
		for name := range s.Names() {
			set[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Track registers a named balloon through its concrete type's store. Views
// obtained from a closed world are read-only and refuse it.
func (bl *Balloonist) Track(ctx context.Context, b *balloon.Balloon) error {
	if !bl.tracking {
		return fmt.Errorf("balloonist for %s is read-only", bl.bound)
	}
	if !b.IsNamed() {
		return fmt.Errorf("cannot track anonymous %s", b.Type())
	}
	if !b.Type().IsSubtypeOf(bl.bound) {
		return fmt.Errorf("%s is outside the %s bound", b.Type(), bl.bound)
	}
	s, ok := bl.stores[b.Type()]
	if !ok {
		return fmt.Errorf("type %s is not nameable in the world schema", b.Type())
	}
	return s.Track(ctx, b)
}
