package balloon

import (
	"strings"
	"testing"
)

func TestNew_ValidatesFields(t *testing.T) {
	_, _, simple, _ := newFoodRegistry(t)

	if _, err := New(simple, map[string]Value{}); err == nil {
		t.Fatalf("expected missing field error")
	}
	if _, err := New(simple, map[string]Value{"calories": String("ten")}); err == nil {
		t.Fatalf("expected type mismatch error")
	}
	if _, err := New(simple, map[string]Value{"calories": Int(10), "color": String("red")}); err == nil {
		t.Fatalf("expected unknown field error")
	}
	b, err := New(simple, map[string]Value{"calories": Int(10)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v, ok := b.Field("calories"); !ok || !Equal(v, Int(10)) {
		t.Fatalf("field readback: %v %v", v, ok)
	}
}

func TestNew_OptionalAdmitsNil(t *testing.T) {
	reg := NewRegistry()
	note := reg.MustRegister(TypeSpec{
		Name: "Note", Nameable: true,
		Fields: []Field{{Name: "text", Type: OptionalOf(StringType())}},
	})
	if _, err := New(note, map[string]Value{"text": nil}); err != nil {
		t.Fatalf("optional nil: %v", err)
	}
	nonOpt := reg.MustRegister(TypeSpec{
		Name: "Strict", Nameable: true,
		Fields: []Field{{Name: "text", Type: StringType()}},
	})
	if _, err := New(nonOpt, map[string]Value{"text": nil}); err == nil {
		t.Fatalf("expected nil rejection for non-optional field")
	}
}

func TestNamed_Promotion(t *testing.T) {
	_, _, simple, _ := newFoodRegistry(t)

	anon := MustNew(simple, map[string]Value{"calories": Int(10)})
	if anon.IsNamed() {
		t.Fatalf("fresh balloon should be anonymous")
	}
	apple, err := anon.Named("apple")
	if err != nil {
		t.Fatalf("Named: %v", err)
	}
	if !apple.IsNamed() || apple.Name() != "apple" {
		t.Fatalf("promotion failed: %v", apple)
	}
	// the original is untouched
	if anon.IsNamed() {
		t.Fatalf("promotion must not mutate the source")
	}
	if _, err := apple.Named("pear"); err == nil {
		t.Fatalf("expected renaming rejection")
	}
	if _, err := anon.Named(""); err == nil {
		t.Fatalf("expected empty name rejection")
	}
	nonNameable := MustNew(mustRegisterPlain(t), nil)
	if _, err := nonNameable.Named("x"); err == nil {
		t.Fatalf("expected non-nameable rejection")
	}
}

func mustRegisterPlain(t *testing.T) *Type {
	t.Helper()
	reg := NewRegistry()
	return reg.MustRegister(TypeSpec{Name: "Plain"})
}

func TestEqual_NamedByIdentityAnonymousByStructure(t *testing.T) {
	_, _, simple, _ := newFoodRegistry(t)

	a1 := MustNew(simple, map[string]Value{"calories": Int(10)})
	a2 := MustNew(simple, map[string]Value{"calories": Int(10)})
	b := MustNew(simple, map[string]Value{"calories": Int(20)})

	if !Equal(a1, a2) {
		t.Fatalf("equal anonymous balloons should compare equal")
	}
	if Equal(a1, b) {
		t.Fatalf("different anonymous balloons should not compare equal")
	}

	// named equality ignores fields and goes by (type, name)
	n1 := a1.MustNamed("apple")
	n2 := b.MustNamed("apple")
	if !Equal(n1, n2) {
		t.Fatalf("same-named balloons compare equal by identity")
	}
	if n1.EqualStructure(n2) {
		t.Fatalf("EqualStructure must still see the field difference")
	}
	if !n1.EqualStructure(a2.MustNamed("apple")) {
		t.Fatalf("EqualStructure on equal construction: want true")
	}
	if Equal(n1, b.MustNamed("pear")) {
		t.Fatalf("different names must not compare equal")
	}
}

func TestSet_CanonicalOrderAndDedup(t *testing.T) {
	s1, err := NewSet(String("b"), String("a"))
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	s2, err := NewSet(String("a"), String("b"))
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	if !Equal(s1, s2) {
		t.Fatalf("sets with the same elements should be equal regardless of order")
	}
	if !s1.Has(String("a")) || s1.Has(String("c")) {
		t.Fatalf("Has misbehaving")
	}
	if _, err := NewSet(String("a"), String("a")); err == nil {
		t.Fatalf("expected duplicate rejection")
	}
	if _, err := NewSet(Int(1)); err == nil {
		t.Fatalf("expected unsupported element rejection")
	}
}

func TestSet_RejectsAnonymousBalloons(t *testing.T) {
	_, _, simple, _ := newFoodRegistry(t)
	anon := MustNew(simple, map[string]Value{"calories": Int(10)})
	if _, err := NewSet(anon); err == nil {
		t.Fatalf("expected anonymous element rejection")
	}
	named := anon.MustNamed("apple")
	if _, err := NewSet(named); err != nil {
		t.Fatalf("named element should be accepted: %v", err)
	}
}

func TestMap_CanonicalOrderAndLookup(t *testing.T) {
	m1, err := NewMap(
		MapEntry{Key: String("b"), Value: Int(2)},
		MapEntry{Key: String("a"), Value: Int(1)},
	)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	m2, err := NewMap(
		MapEntry{Key: String("a"), Value: Int(1)},
		MapEntry{Key: String("b"), Value: Int(2)},
	)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if !Equal(m1, m2) {
		t.Fatalf("maps with the same entries should be equal regardless of order")
	}
	if v, ok := m1.Get(String("a")); !ok || !Equal(v, Int(1)) {
		t.Fatalf("Get: %v %v", v, ok)
	}
	if _, err := NewMap(
		MapEntry{Key: String("a"), Value: Int(1)},
		MapEntry{Key: String("a"), Value: Int(2)},
	); err == nil {
		t.Fatalf("expected duplicate key rejection")
	}
	if _, err := NewMap(MapEntry{Key: Int(1), Value: Int(1)}); err == nil {
		t.Fatalf("expected unsupported key rejection")
	}
}

func TestMember_RejectsUndeclared(t *testing.T) {
	color := NewEnumType("Color", "red", "green")
	if _, err := Member(color, "blue"); err == nil {
		t.Fatalf("expected undeclared member rejection")
	}
	sym, err := Member(color, "red")
	if err != nil {
		t.Fatalf("Member: %v", err)
	}
	other := NewEnumType("Color", "red", "green")
	otherSym, _ := Member(other, "red")
	if Equal(sym, otherSym) {
		t.Fatalf("members of distinct enum descriptors must not compare equal")
	}
}

func TestCanonicalKey_Deterministic(t *testing.T) {
	_, _, simple, _ := newFoodRegistry(t)
	apple := MustNew(simple, map[string]Value{"calories": Int(10)}).MustNamed("apple")

	k1, err := CanonicalKey(apple)
	if err != nil {
		t.Fatalf("CanonicalKey: %v", err)
	}
	if k1 != "n:SimpleFood:apple" {
		t.Fatalf("named key rendering: %q", k1)
	}

	anon := MustNew(simple, map[string]Value{"calories": Int(10)})
	k2, err := CanonicalKey(anon)
	if err != nil {
		t.Fatalf("CanonicalKey: %v", err)
	}
	if !strings.HasPrefix(k2, "a:SimpleFood:{") {
		t.Fatalf("anonymous key rendering: %q", k2)
	}

	// distinct scalar kinds stay distinct
	ki, _ := CanonicalKey(Int(1))
	kf, _ := CanonicalKey(Float(1))
	ks, _ := CanonicalKey(String("1"))
	if ki == kf || ki == ks || kf == ks {
		t.Fatalf("scalar keys collide: %q %q %q", ki, kf, ks)
	}

	set, _ := NewSet(String("b"), String("a"))
	kset1, _ := CanonicalKey(set)
	set2, _ := NewSet(String("a"), String("b"))
	kset2, _ := CanonicalKey(set2)
	if kset1 != kset2 {
		t.Fatalf("set keys must be order independent: %q vs %q", kset1, kset2)
	}
}
