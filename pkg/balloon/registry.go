package balloon

import (
	"fmt"
	"sort"
)

// RootTypeName is the qualified name of the synthetic hierarchy root.
const RootTypeName = "Balloon"

// TypeSpec declares a balloon type for registration.
type TypeSpec struct {
	// Name is the qualified type name, globally unique within the registry.
	Name string
	// Base is the direct supertype; nil means the registry root.
	Base *Type
	// Nameable marks types whose instances carry an identity name and are
	// stored under their own entry.
	Nameable bool
	// Fields are the fields declared directly on the type.
	Fields []Field
}

// Registry is the explicit, constructed type registry the closure builder and
// the worlds operate over. It is built once at schema-definition time and
// read-only afterward; registration is not safe for concurrent use.
type Registry struct {
	root     *Type
	byName   map[string]*Type
	children map[*Type][]*Type
}

// NewRegistry returns a registry holding only the synthetic root type.
func NewRegistry() *Registry {
	root := &Type{name: RootTypeName}
	return &Registry{
		root:     root,
		byName:   map[string]*Type{RootTypeName: root},
		children: map[*Type][]*Type{},
	}
}

// Root returns the universal root type.
func (r *Registry) Root() *Type { return r.root }

// Register declares a new balloon type. Name collisions, foreign base types
// and redeclared field names are rejected.
func (r *Registry) Register(spec TypeSpec) (*Type, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("balloon: type name required")
	}
	if _, ok := r.byName[spec.Name]; ok {
		return nil, fmt.Errorf("balloon: type %q already registered", spec.Name)
	}
	base := spec.Base
	if base == nil {
		base = r.root
	}
	if r.byName[base.Name()] != base {
		return nil, fmt.Errorf("balloon: base type %q not registered here", base.Name())
	}
	seen := map[string]struct{}{"name": {}}
	for _, f := range base.AllFields() {
		seen[f.Name] = struct{}{}
	}
	for _, f := range spec.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("balloon: type %q declares an unnamed field", spec.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("balloon: type %q redeclares field %q", spec.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	t := &Type{
		name:     spec.Name,
		base:     base,
		nameable: spec.Nameable,
		fields:   append([]Field(nil), spec.Fields...),
	}
	r.byName[t.name] = t
	r.children[base] = append(r.children[base], t)
	return t, nil
}

// MustRegister is Register for schema-definition call sites where a failure is
// a programming error.
func (r *Registry) MustRegister(spec TypeSpec) *Type {
	t, err := r.Register(spec)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup resolves a type by qualified name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Subtypes returns the direct subtypes of t.
func (r *Registry) Subtypes(t *Type) []*Type {
	return append([]*Type(nil), r.children[t]...)
}

// Types returns every registered type, root included, sorted by name.
func (r *Registry) Types() []*Type {
	out := make([]*Type, 0, len(r.byName))
	for _, t := range r.byName {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
