// Package balloon defines the value model and schema primitives for the
// balloon object store: immutable value objects organised in a single-rooted
// type hierarchy, field type descriptors, and the closure computations the
// world layer builds its schema from.
package balloon

import "fmt"

// Kind identifies the shape of a field descriptor.
type Kind int

// Field descriptor kinds. The set is closed: the codec dispatches on Kind and
// treats anything else as unsupported.
const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
	KindBool
	KindEnum
	KindBalloon
	KindOptional
	KindTuple
	KindSet
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindBalloon:
		return "balloon"
	case KindOptional:
		return "optional"
	case KindTuple:
		return "tuple"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// EnumType describes a named enumeration with a fixed member list.
type EnumType struct {
	name    string
	members []string
	index   map[string]struct{}
}

// NewEnumType constructs an enum descriptor from its qualified name and members.
func NewEnumType(name string, members ...string) *EnumType {
	idx := make(map[string]struct{}, len(members))
	for _, m := range members {
		idx[m] = struct{}{}
	}
	return &EnumType{name: name, members: append([]string(nil), members...), index: idx}
}

// Name returns the qualified name of the enum.
func (e *EnumType) Name() string { return e.name }

// Members returns the declared member names in declaration order.
func (e *EnumType) Members() []string { return append([]string(nil), e.members...) }

// Has reports whether member is declared on the enum.
func (e *EnumType) Has(member string) bool {
	_, ok := e.index[member]
	return ok
}

// FieldType is a closed tagged-variant descriptor for the static type of a
// balloon field. Exactly the parameters relevant to Kind are set:
//
//	Optional/Tuple/Set -> Elem
//	Map                -> Key, Value
//	Balloon            -> Balloon
//	Enum               -> Enum
type FieldType struct {
	Kind    Kind
	Elem    *FieldType
	Key     *FieldType
	Value   *FieldType
	Balloon *Type
	Enum    *EnumType
}

// Descriptor constructors. Schemas are declared once through these and the
// result is treated as read-only afterward.

// IntType returns the int scalar descriptor.
func IntType() FieldType { return FieldType{Kind: KindInt} }

// FloatType returns the float scalar descriptor.
func FloatType() FieldType { return FieldType{Kind: KindFloat} }

// StringType returns the string scalar descriptor.
func StringType() FieldType { return FieldType{Kind: KindString} }

// BoolType returns the bool scalar descriptor.
func BoolType() FieldType { return FieldType{Kind: KindBool} }

// EnumOf returns a descriptor for members of the given enum.
func EnumOf(e *EnumType) FieldType { return FieldType{Kind: KindEnum, Enum: e} }

// RefTo returns a descriptor for balloons of the given static type.
func RefTo(t *Type) FieldType { return FieldType{Kind: KindBalloon, Balloon: t} }

// OptionalOf wraps a descriptor so null becomes an admissible value.
func OptionalOf(elem FieldType) FieldType { return FieldType{Kind: KindOptional, Elem: &elem} }

// TupleOf returns a descriptor for ordered sequences of elem values.
func TupleOf(elem FieldType) FieldType { return FieldType{Kind: KindTuple, Elem: &elem} }

// SetOf returns a descriptor for sets of elem values. Set elements must be
// named balloons, enum members, or strings.
func SetOf(elem FieldType) FieldType { return FieldType{Kind: KindSet, Elem: &elem} }

// MapOf returns a descriptor for maps. Keys must be named balloons, enum
// members, or strings.
func MapOf(key, value FieldType) FieldType {
	return FieldType{Kind: KindMap, Key: &key, Value: &value}
}

func (ft FieldType) String() string {
	switch ft.Kind {
	case KindEnum:
		return fmt.Sprintf("enum(%s)", ft.Enum.Name())
	case KindBalloon:
		return fmt.Sprintf("balloon(%s)", ft.Balloon.Name())
	case KindOptional:
		return fmt.Sprintf("optional(%s)", ft.Elem)
	case KindTuple:
		return fmt.Sprintf("tuple(%s)", ft.Elem)
	case KindSet:
		return fmt.Sprintf("set(%s)", ft.Elem)
	case KindMap:
		return fmt.Sprintf("map(%s, %s)", ft.Key, ft.Value)
	default:
		return ft.Kind.String()
	}
}

// Field is a declared field of a balloon type.
type Field struct {
	Name string
	Type FieldType
}

// Type describes a balloon type: its qualified name, its direct base, whether
// instances may carry a name, and its declared (own, non-inherited) fields.
// Types are created through a Registry and compared by pointer.
type Type struct {
	name     string
	base     *Type
	nameable bool
	fields   []Field
}

// Name returns the qualified name of the type.
func (t *Type) Name() string { return t.name }

// Base returns the direct base type, or nil for the hierarchy root.
func (t *Type) Base() *Type { return t.base }

// Nameable reports whether instances of the type may carry an identity name.
func (t *Type) Nameable() bool { return t.nameable }

// Fields returns the fields declared directly on the type.
func (t *Type) Fields() []Field { return append([]Field(nil), t.fields...) }

// AllFields returns declared plus inherited fields, base-most first.
func (t *Type) AllFields() []Field {
	if t.base == nil {
		return t.Fields()
	}
	return append(t.base.AllFields(), t.fields...)
}

// FieldType looks up the descriptor for a field by name across the ancestry.
func (t *Type) FieldType(name string) (FieldType, bool) {
	for cur := t; cur != nil; cur = cur.base {
		for _, f := range cur.fields {
			if f.Name == name {
				return f.Type, true
			}
		}
	}
	return FieldType{}, false
}

// IsSubtypeOf reports whether t equals u or descends from it.
func (t *Type) IsSubtypeOf(u *Type) bool {
	for cur := t; cur != nil; cur = cur.base {
		if cur == u {
			return true
		}
	}
	return false
}

func (t *Type) String() string { return t.name }
