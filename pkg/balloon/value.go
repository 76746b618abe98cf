package balloon

import (
	"fmt"
	"sort"
)

// Value is a field value: nil (null), a scalar, an enum member, a container,
// or a balloon. The set of implementations is closed.
type Value interface {
	isValue()
}

// Int is an integer scalar value.
type Int int64

// Float is a floating point scalar value.
type Float float64

// String is a string scalar value.
type String string

// Bool is a boolean scalar value.
type Bool bool

func (Int) isValue()    {}
func (Float) isValue()  {}
func (String) isValue() {}
func (Bool) isValue()   {}

// Symbol is a member of an enum type.
type Symbol struct {
	Enum   *EnumType
	Member string
}

func (Symbol) isValue() {}

// Member returns the enum member as a value, erroring on undeclared members.
func Member(e *EnumType, member string) (Symbol, error) {
	if !e.Has(member) {
		return Symbol{}, fmt.Errorf("balloon: enum %s has no member %q", e.Name(), member)
	}
	return Symbol{Enum: e, Member: member}, nil
}

// Tuple is an ordered sequence of values.
type Tuple []Value

func (Tuple) isValue() {}

// Set is a collection of named balloons, enum members, or strings with unique
// elements held in canonical order, so equality and serialization are
// deterministic.
type Set struct {
	elems []Value
}

func (Set) isValue() {}

// NewSet builds a set from elems, rejecting unsupported element kinds and
// duplicates. Element order is canonicalized.
func NewSet(elems ...Value) (Set, error) {
	canon, err := canonicalize(elems, func(v Value) error {
		switch e := v.(type) {
		case String, Symbol:
			return nil
		case *Balloon:
			if !e.IsNamed() {
				return fmt.Errorf("balloon: set elements must be named, got anonymous %s", e.Type())
			}
			return nil
		default:
			return fmt.Errorf("balloon: unsupported set element %T", v)
		}
	})
	if err != nil {
		return Set{}, err
	}
	return Set{elems: canon}, nil
}

// Elems returns the elements in canonical order.
func (s Set) Elems() []Value { return append([]Value(nil), s.elems...) }

// Len returns the number of elements.
func (s Set) Len() int { return len(s.elems) }

// Has reports whether the set contains a value equal to v.
func (s Set) Has(v Value) bool {
	for _, e := range s.elems {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is a mapping with balloon, enum, or string keys. Keys are unique and
// entries are held in canonical key order.
type Map struct {
	entries []MapEntry
}

func (Map) isValue() {}

// NewMap builds a map from entries, rejecting unsupported or duplicate keys.
// Entry order is canonicalized by key.
func NewMap(entries ...MapEntry) (Map, error) {
	keys := make([]Value, len(entries))
	byKey := make(map[string]MapEntry, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		switch e.Key.(type) {
		case String, Symbol, *Balloon:
		default:
			return Map{}, fmt.Errorf("balloon: unsupported map key %T", e.Key)
		}
		k, err := CanonicalKey(e.Key)
		if err != nil {
			return Map{}, err
		}
		if _, dup := byKey[k]; dup {
			return Map{}, fmt.Errorf("balloon: duplicate map key %s", k)
		}
		byKey[k] = e
	}
	canonKeys, err := canonicalize(keys, func(Value) error { return nil })
	if err != nil {
		return Map{}, err
	}
	out := make([]MapEntry, len(canonKeys))
	for i, k := range canonKeys {
		ck, _ := CanonicalKey(k)
		out[i] = byKey[ck]
	}
	return Map{entries: out}, nil
}

// Entries returns the entries in canonical key order.
func (m Map) Entries() []MapEntry { return append([]MapEntry(nil), m.entries...) }

// Len returns the number of entries.
func (m Map) Len() int { return len(m.entries) }

// Get returns the value bound to a key equal to k.
func (m Map) Get(k Value) (Value, bool) {
	for _, e := range m.entries {
		if Equal(e.Key, k) {
			return e.Value, true
		}
	}
	return nil, false
}

// Equal reports value equality: structural for scalars, containers and
// anonymous balloons; identity by (type, name) for named balloons. This is
// the everyday equality of the model; see Balloon.EqualStructure for the deep
// comparison trackers use on same-named instances.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Symbol:
		bv, ok := b.(Symbol)
		return ok && av.Enum == bv.Enum && av.Member == bv.Member
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Set:
		bv, ok := b.(Set)
		if !ok || len(av.elems) != len(bv.elems) {
			return false
		}
		for i := range av.elems {
			if !Equal(av.elems[i], bv.elems[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av.entries) != len(bv.entries) {
			return false
		}
		for i := range av.entries {
			if !Equal(av.entries[i].Key, bv.entries[i].Key) ||
				!Equal(av.entries[i].Value, bv.entries[i].Value) {
				return false
			}
		}
		return true
	case *Balloon:
		bv, ok := b.(*Balloon)
		if !ok || av.typ != bv.typ || av.name != bv.name {
			return false
		}
		if av.IsNamed() {
			return true
		}
		return av.fieldsEqual(bv)
	default:
		return false
	}
}

func canonicalize(elems []Value, check func(Value) error) ([]Value, error) {
	type keyed struct {
		key string
		val Value
	}
	ks := make([]keyed, 0, len(elems))
	seen := make(map[string]struct{}, len(elems))
	for _, v := range elems {
		if err := check(v); err != nil {
			return nil, err
		}
		k, err := CanonicalKey(v)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("balloon: duplicate element %s", k)
		}
		seen[k] = struct{}{}
		ks = append(ks, keyed{key: k, val: v})
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	out := make([]Value, len(ks))
	for i, kv := range ks {
		out[i] = kv.val
	}
	return out, nil
}
