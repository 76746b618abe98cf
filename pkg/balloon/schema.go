package balloon

import (
	"fmt"
	"sort"
)

// Schema is the invariant triple a world is bound to: the namespace types, the
// full reachable type set, and the nameable subset. It is computed once by
// closure over declared roots and validated at construction.
type Schema struct {
	namespaceTypes map[*Type]struct{}
	types          map[*Type]struct{}
	nameable       map[*Type]struct{}
}

// BuildSchema computes and validates a schema from the given roots against a
// registry. Invariants, all fatal at creation time:
//
//	namespace types and nameable types are subsets of the full closure;
//	every nameable type has a namespace-type ancestor;
//	every namespace type has at least one nameable descendant.
func BuildSchema(reg *Registry, namespaceTypes, topTypes, topNameable []*Type) (*Schema, error) {
	if len(namespaceTypes) == 0 {
		namespaceTypes = []*Type{reg.Root()}
	}
	if len(topTypes) == 0 {
		topTypes = []*Type{reg.Root()}
	}
	if len(topNameable) == 0 {
		topNameable = []*Type{reg.Root()}
	}

	full := reg.DependencyClosure(topTypes...)

	nameable := make(map[*Type]struct{})
	for t := range reg.SubtypeClosure(topNameable...) {
		if t.Nameable() {
			nameable[t] = struct{}{}
		}
	}

	s := &Schema{
		namespaceTypes: make(map[*Type]struct{}, len(namespaceTypes)),
		types:          full,
		nameable:       nameable,
	}
	for _, t := range namespaceTypes {
		s.namespaceTypes[t] = struct{}{}
	}

	for t := range s.namespaceTypes {
		if _, ok := full[t]; !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("namespace type %s outside the type closure", t)}
		}
	}
	for t := range nameable {
		if _, ok := full[t]; !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("nameable type %s outside the type closure", t)}
		}
		if len(s.NamespaceAncestors(t)) == 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("nameable type %s has no namespace ancestor", t)}
		}
	}
	for ns := range s.namespaceTypes {
		found := false
		for t := range nameable {
			if t.IsSubtypeOf(ns) {
				found = true
				break
			}
		}
		if !found {
			return nil, &ConfigError{Reason: fmt.Sprintf("namespace type %s has no nameable descendant", ns)}
		}
	}
	return s, nil
}

// Contains reports whether t is in the full type set.
func (s *Schema) Contains(t *Type) bool {
	_, ok := s.types[t]
	return ok
}

// IsNameable reports whether t is in the nameable set.
func (s *Schema) IsNameable(t *Type) bool {
	_, ok := s.nameable[t]
	return ok
}

// NamespaceAncestors returns the namespace types t descends from.
func (s *Schema) NamespaceAncestors(t *Type) []*Type {
	var out []*Type
	for ns := range s.namespaceTypes {
		if t.IsSubtypeOf(ns) {
			out = append(out, ns)
		}
	}
	sortTypes(out)
	return out
}

// NamespaceTypes returns the namespace types, sorted by name.
func (s *Schema) NamespaceTypes() []*Type { return sortedTypeSet(s.namespaceTypes) }

// Types returns the full type set, sorted by name.
func (s *Schema) Types() []*Type { return sortedTypeSet(s.types) }

// NameableTypes returns the nameable type set, sorted by name.
func (s *Schema) NameableTypes() []*Type { return sortedTypeSet(s.nameable) }

func sortedTypeSet(set map[*Type]struct{}) []*Type {
	out := make([]*Type, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sortTypes(out)
	return out
}

func sortTypes(ts []*Type) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].name < ts[j].name })
}
