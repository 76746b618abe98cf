// Package world composes the balloon schema, the codec, and per-type blob
// stores into layered worlds: closed (read-only) views over a store location
// and open (growable) ones that also accept new balloons.
package world

import (
	"sort"

	"balloons/pkg/balloon"
)

// TypeProvider resolves the concrete type of a named balloon given a static
// type bound. A nil type with a nil error means the name is unknown.
type TypeProvider interface {
	TypeOf(name string, static *balloon.Type) (*balloon.Type, error)
}

// dynamicTypes is the per-world registry of (name, concrete type) pairs,
// partitioned implicitly by the schema's namespace types and layered over a
// baseline registry.
type dynamicTypes struct {
	schema   *balloon.Schema
	baseline TypeProvider
	names    map[string]map[*balloon.Type]struct{}
}

func newDynamicTypes(schema *balloon.Schema, baseline TypeProvider) *dynamicTypes {
	return &dynamicTypes{
		schema:   schema,
		baseline: baseline,
		names:    make(map[string]map[*balloon.Type]struct{}),
	}
}

// TypeOf returns the concrete type registered for name within the static
// bound, falling through to the baseline registry when this layer has no
// match. More than one match within the bound means the store is corrupted;
// that is fatal, not retryable.
func (d *dynamicTypes) TypeOf(name string, static *balloon.Type) (*balloon.Type, error) {
	var candidates []*balloon.Type
	for t := range d.names[name] {
		if t.IsSubtypeOf(static) {
			candidates = append(candidates, t)
		}
	}
	switch len(candidates) {
	case 0:
		if d.baseline != nil {
			return d.baseline.TypeOf(name, static)
		}
		return nil, nil
	case 1:
		return candidates[0], nil
	default:
		typeNames := make([]string, len(candidates))
		for i, t := range candidates {
			typeNames[i] = t.Name()
		}
		sort.Strings(typeNames)
		return nil, &balloon.AmbiguityError{Name: name, Types: typeNames}
	}
}

// track records a (name, type) pair after checking, against this registry and
// the whole baseline chain, that no different concrete type already owns the
// name within a shared namespace ancestor.
func (d *dynamicTypes) track(name string, t *balloon.Type) error {
	if existing, err := d.TypeOf(name, t); err != nil {
		return err
	} else if existing == t {
		return nil
	}
	for _, ns := range d.schema.NamespaceAncestors(t) {
		existing, err := d.TypeOf(name, ns)
		if err != nil {
			return err
		}
		if existing != nil && existing != t {
			return &balloon.NamespaceError{
				Name:      name,
				Namespace: ns.Name(),
				Existing:  existing.Name(),
				Incoming:  t.Name(),
			}
		}
	}
	set, ok := d.names[name]
	if !ok {
		set = make(map[*balloon.Type]struct{})
		d.names[name] = set
	}
	set[t] = struct{}{}
	return nil
}
