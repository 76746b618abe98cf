package balloon

// DependencyClosure computes the set of balloon types reachable from roots,
// expanding each newly discovered type through its direct subtypes and through
// every balloon type appearing in its declared field descriptors (unwrapping
// optional, tuple and set elements and both sides of maps).
func (r *Registry) DependencyClosure(roots ...*Type) map[*Type]struct{} {
	return r.closure(roots, true)
}

// SubtypeClosure computes the subclass-only closure of roots: no field
// inspection, just the subtype tree under each root.
func (r *Registry) SubtypeClosure(roots ...*Type) map[*Type]struct{} {
	return r.closure(roots, false)
}

func (r *Registry) closure(roots []*Type, inspectFields bool) map[*Type]struct{} {
	seen := make(map[*Type]struct{})
	frontier := append([]*Type(nil), roots...)
	for len(frontier) > 0 {
		t := frontier[0]
		frontier = frontier[1:]
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		frontier = append(frontier, r.children[t]...)
		if !inspectFields {
			continue
		}
		for _, f := range t.fields {
			frontier = appendFieldTypes(frontier, f.Type)
		}
	}
	return seen
}

func appendFieldTypes(frontier []*Type, ft FieldType) []*Type {
	switch ft.Kind {
	case KindBalloon:
		frontier = append(frontier, ft.Balloon)
	case KindOptional, KindTuple, KindSet:
		frontier = appendFieldTypes(frontier, *ft.Elem)
	case KindMap:
		frontier = appendFieldTypes(frontier, *ft.Key)
		frontier = appendFieldTypes(frontier, *ft.Value)
	}
	return frontier
}
