package balloon

import (
	"fmt"
	"sort"
)

// Balloon is an immutable aggregate of named fields. Anonymous balloons have
// no identity of their own and are always inlined into their containing
// structure; named balloons carry a name and are stored under their own
// entry, with identity derived from (type, name).
type Balloon struct {
	typ    *Type
	name   string
	fields map[string]Value
}

func (*Balloon) isValue() {}

// New constructs an anonymous balloon of type t, validating the supplied
// fields against the type's declared descriptors. Every declared field must
// be present; nil is admitted only for optional fields.
func New(t *Type, fields map[string]Value) (*Balloon, error) {
	if t == nil {
		return nil, fmt.Errorf("balloon: nil type")
	}
	declared := t.AllFields()
	if len(fields) != len(declared) {
		for name := range fields {
			if _, ok := t.FieldType(name); !ok {
				return nil, fmt.Errorf("balloon: type %s has no field %q", t, name)
			}
		}
	}
	copied := make(map[string]Value, len(declared))
	for _, f := range declared {
		v, ok := fields[f.Name]
		if !ok {
			return nil, fmt.Errorf("balloon: missing field %q of %s", f.Name, t)
		}
		if err := checkValue(v, f.Type); err != nil {
			return nil, fmt.Errorf("field %q of %s: %w", f.Name, t, err)
		}
		copied[f.Name] = v
	}
	return &Balloon{typ: t, fields: copied}, nil
}

// MustNew is New for fixture and schema-definition call sites.
func MustNew(t *Type, fields map[string]Value) *Balloon {
	b, err := New(t, fields)
	if err != nil {
		panic(err)
	}
	return b
}

// Named promotes the balloon to a named balloon. Promoting an already named
// balloon or an instance of a non-nameable type is an error.
func (b *Balloon) Named(name string) (*Balloon, error) {
	if b.name != "" {
		return nil, fmt.Errorf("balloon: %s already named %q", b.typ, b.name)
	}
	if !b.typ.Nameable() {
		return nil, fmt.Errorf("balloon: type %s is not nameable", b.typ)
	}
	if name == "" {
		return nil, fmt.Errorf("balloon: empty name")
	}
	return &Balloon{typ: b.typ, name: name, fields: b.fields}, nil
}

// MustNamed is Named for fixture call sites.
func (b *Balloon) MustNamed(name string) *Balloon {
	nb, err := b.Named(name)
	if err != nil {
		panic(err)
	}
	return nb
}

// Type returns the concrete balloon type.
func (b *Balloon) Type() *Type { return b.typ }

// Name returns the identity name, empty for anonymous balloons.
func (b *Balloon) Name() string { return b.name }

// IsNamed reports whether the balloon carries an identity name.
func (b *Balloon) IsNamed() bool { return b.name != "" }

// Field returns the value of a field.
func (b *Balloon) Field(name string) (Value, bool) {
	v, ok := b.fields[name]
	return v, ok
}

// FieldNames returns the field names present on the balloon, sorted.
func (b *Balloon) FieldNames() []string {
	out := make([]string, 0, len(b.fields))
	for name := range b.fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Identical reports pointer identity: the strict in-memory notion the
// per-type stores use for their single-instance invariant.
func (b *Balloon) Identical(other *Balloon) bool { return b == other }

// Equal is the value equality of Balloon as a Value: identity by
// (type, name) for named balloons, structural for anonymous ones.
func (b *Balloon) Equal(other *Balloon) bool { return Equal(b, other) }

// EqualStructure compares two balloons field by field regardless of name
// identity shortcuts at the top level. Trackers use it to decide between
// coalescing a duplicate construction and reporting a conflict.
func (b *Balloon) EqualStructure(other *Balloon) bool {
	if other == nil || b.typ != other.typ || b.name != other.name {
		return false
	}
	return b.fieldsEqual(other)
}

func (b *Balloon) fieldsEqual(other *Balloon) bool {
	if len(b.fields) != len(other.fields) {
		return false
	}
	for name, v := range b.fields {
		ov, ok := other.fields[name]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

func (b *Balloon) String() string {
	s, err := CanonicalKey(b)
	if err != nil {
		return fmt.Sprintf("%s(?)", b.typ)
	}
	return s
}

// checkValue validates a value against a static field descriptor.
func checkValue(v Value, ft FieldType) error {
	if ft.Kind == KindOptional {
		if v == nil {
			return nil
		}
		return checkValue(v, *ft.Elem)
	}
	if v == nil {
		return fmt.Errorf("null value for non-optional %s", ft)
	}
	switch ft.Kind {
	case KindInt:
		if _, ok := v.(Int); !ok {
			return fmt.Errorf("expected int, got %T", v)
		}
	case KindFloat:
		if _, ok := v.(Float); !ok {
			return fmt.Errorf("expected float, got %T", v)
		}
	case KindString:
		if _, ok := v.(String); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
	case KindBool:
		if _, ok := v.(Bool); !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
	case KindEnum:
		sym, ok := v.(Symbol)
		if !ok || sym.Enum != ft.Enum {
			return fmt.Errorf("expected member of %s, got %v", ft.Enum.Name(), v)
		}
	case KindBalloon:
		b, ok := v.(*Balloon)
		if !ok {
			return fmt.Errorf("expected balloon, got %T", v)
		}
		if !b.typ.IsSubtypeOf(ft.Balloon) {
			return fmt.Errorf("%s is not a subtype of %s", b.typ, ft.Balloon)
		}
	case KindTuple:
		tup, ok := v.(Tuple)
		if !ok {
			return fmt.Errorf("expected tuple, got %T", v)
		}
		for i, e := range tup {
			if err := checkValue(e, *ft.Elem); err != nil {
				return fmt.Errorf("tuple item %d: %w", i, err)
			}
		}
	case KindSet:
		set, ok := v.(Set)
		if !ok {
			return fmt.Errorf("expected set, got %T", v)
		}
		for _, e := range set.elems {
			if err := checkValue(e, *ft.Elem); err != nil {
				return fmt.Errorf("set element: %w", err)
			}
		}
	case KindMap:
		m, ok := v.(Map)
		if !ok {
			return fmt.Errorf("expected map, got %T", v)
		}
		for _, e := range m.entries {
			if err := checkValue(e.Key, *ft.Key); err != nil {
				return fmt.Errorf("map key: %w", err)
			}
			if err := checkValue(e.Value, *ft.Value); err != nil {
				return fmt.Errorf("map value: %w", err)
			}
		}
	default:
		return fmt.Errorf("unsupported field descriptor %s", ft)
	}
	return nil
}
