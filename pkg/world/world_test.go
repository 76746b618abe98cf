package world

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"balloons/internal/blob"
	"balloons/pkg/balloon"
)

func foodRegistry(t *testing.T) (*balloon.Registry, *balloon.Type, *balloon.Type, *balloon.Type) {
	t.Helper()
	reg := balloon.NewRegistry()
	food := reg.MustRegister(balloon.TypeSpec{Name: "Food"})
	simple := reg.MustRegister(balloon.TypeSpec{
		Name: "SimpleFood", Base: food, Nameable: true,
		Fields: []balloon.Field{{Name: "calories", Type: balloon.IntType()}},
	})
	composite := reg.MustRegister(balloon.TypeSpec{
		Name: "CompositeFood", Base: food, Nameable: true,
		Fields: []balloon.Field{{Name: "ingredients", Type: balloon.SetOf(balloon.RefTo(food))}},
	})
	return reg, food, simple, composite
}

func simpleFood(t *testing.T, typ *balloon.Type, name string, calories int64) *balloon.Balloon {
	t.Helper()
	return balloon.MustNew(typ, map[string]balloon.Value{
		"calories": balloon.Int(calories),
	}).MustNamed(name)
}

func compositeFood(t *testing.T, typ *balloon.Type, name string, ingredients ...balloon.Value) *balloon.Balloon {
	t.Helper()
	set, err := balloon.NewSet(ingredients...)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return balloon.MustNew(typ, map[string]balloon.Value{
		"ingredients": set,
	}).MustNamed(name)
}

func TestTrackAndRepopulate(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, composite := foodRegistry(t)
	dir := t.TempDir()

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	ow, err := closed.OpenDir(ctx, dir)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}

	apple := simpleFood(t, simple, "apple", 10)
	banana := simpleFood(t, simple, "banana", 20)
	salad := compositeFood(t, composite, "salad", apple, banana)

	// tracking the salad persists its ingredients first
	if err := ow.Track(ctx, salad); err != nil {
		t.Fatalf("track salad: %v", err)
	}
	for _, p := range []string{
		filepath.Join("SimpleFood", "apple.json"),
		filepath.Join("SimpleFood", "banana.json"),
		filepath.Join("CompositeFood", "salad.json"),
	} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Fatalf("expected blob %s: %v", p, err)
		}
	}

	// the nested tracks registered names too
	bl, err := ow.Balloonist(food)
	if err != nil {
		t.Fatalf("Balloonist: %v", err)
	}
	got, err := bl.Get(ctx, "apple")
	if err != nil || !got.Identical(apple) {
		t.Fatalf("apple after tracking: %v %v", got, err)
	}

	// a fresh world populated from the same location reconstructs the graph
	fresh, err := closed.PopulateDir(ctx, dir)
	if err != nil {
		t.Fatalf("PopulateDir: %v", err)
	}
	fbl, err := fresh.Balloonist(food)
	if err != nil {
		t.Fatalf("Balloonist: %v", err)
	}
	names := fbl.Names()
	if len(names) != 3 || names[0] != "apple" || names[1] != "banana" || names[2] != "salad" {
		t.Fatalf("names: %v", names)
	}
	got, err = fbl.Get(ctx, "salad")
	if err != nil {
		t.Fatalf("get salad: %v", err)
	}
	if !got.Equal(salad) || !got.EqualStructure(salad) {
		t.Fatalf("repopulated salad differs: %v vs %v", got, salad)
	}
	set, _ := got.Field("ingredients")
	if !set.(balloon.Set).Has(apple) || !set.(balloon.Set).Has(banana) {
		t.Fatalf("ingredients lost: %v", set)
	}
}

func TestTrack_ThreeLevelComposite(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, composite := foodRegistry(t)
	store := blob.NewMemory()

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	ow, err := closed.Open(ctx, store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	apple := simpleFood(t, simple, "apple", 10)
	banana := simpleFood(t, simple, "banana", 20)
	carrot := simpleFood(t, simple, "carrot", 5)
	fruitSalad := compositeFood(t, composite, "fruit-salad", apple, banana)
	meal := compositeFood(t, composite, "meal", fruitSalad, carrot)

	if err := ow.Track(ctx, meal); err != nil {
		t.Fatalf("track meal: %v", err)
	}
	// every level persisted exactly once
	simples, _ := store.ListNames(ctx, "SimpleFood")
	comps, _ := store.ListNames(ctx, "CompositeFood")
	if len(simples) != 3 || len(comps) != 2 {
		t.Fatalf("blob layout: simples=%v composites=%v", simples, comps)
	}

	fresh, err := closed.Populate(ctx, store)
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	bl, _ := fresh.Balloonist(food)
	got, err := bl.Get(ctx, "meal")
	if err != nil {
		t.Fatalf("get meal: %v", err)
	}
	if !got.EqualStructure(meal) {
		t.Fatalf("repopulated meal differs: %v vs %v", got, meal)
	}
	set, _ := got.Field("ingredients")
	if !set.(balloon.Set).Has(fruitSalad) || !set.(balloon.Set).Has(carrot) {
		t.Fatalf("meal lost an ingredient: %v", set)
	}
	nested, err := bl.Get(ctx, "fruit-salad")
	if err != nil {
		t.Fatalf("get fruit-salad: %v", err)
	}
	if !nested.EqualStructure(fruitSalad) {
		t.Fatalf("nested composite differs: %v vs %v", nested, fruitSalad)
	}
}

func TestTrack_Idempotency(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, _ := foodRegistry(t)

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	ow, err := closed.Open(ctx, blob.NewMemory())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	apple := simpleFood(t, simple, "apple", 10)
	if err := ow.Track(ctx, apple); err != nil {
		t.Fatalf("first track: %v", err)
	}
	// identical instance: no-op
	if err := ow.Track(ctx, apple); err != nil {
		t.Fatalf("identical re-track: %v", err)
	}
	// equal construction: coalesces
	if err := ow.Track(ctx, simpleFood(t, simple, "apple", 10)); err != nil {
		t.Fatalf("equal re-track: %v", err)
	}
	bl, _ := ow.Balloonist(food)
	got, err := bl.Get(ctx, "apple")
	if err != nil || !got.Identical(apple) {
		t.Fatalf("canonical instance should survive coalescing: %v %v", got, err)
	}
	// different construction: conflict
	var conflict *balloon.ConflictError
	if err := ow.Track(ctx, simpleFood(t, simple, "apple", 99)); !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError, got %v", err)
	}
	if conflict.Type != "SimpleFood" || conflict.Name != "apple" {
		t.Fatalf("conflict details: %+v", conflict)
	}
}

func TestTrack_ConflictAgainstDisk(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, _ := foodRegistry(t)
	store := blob.NewMemory()

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	ow, err := closed.Open(ctx, store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ow.Track(ctx, simpleFood(t, simple, "apple", 10)); err != nil {
		t.Fatalf("track: %v", err)
	}

	// a second world over the same location knows the name but has not
	// materialized it
	ow2, err := closed.Open(ctx, store)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	incoming := simpleFood(t, simple, "apple", 10)
	if err := ow2.Track(ctx, incoming); err != nil {
		t.Fatalf("equal track against disk: %v", err)
	}
	bl, _ := ow2.Balloonist(food)
	got, err := bl.Get(ctx, "apple")
	if err != nil || !got.Identical(incoming) {
		t.Fatalf("incoming instance should be adopted: %v %v", got, err)
	}

	ow3, err := closed.Open(ctx, store)
	if err != nil {
		t.Fatalf("third open: %v", err)
	}
	var conflict *balloon.ConflictError
	if err := ow3.Track(ctx, simpleFood(t, simple, "apple", 99)); !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError against disk, got %v", err)
	}
}

func TestNamespace_CollisionWithinSharedAncestor(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, composite := foodRegistry(t)

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	store := blob.NewMemory()
	ow, err := closed.Open(ctx, store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ow.Track(ctx, simpleFood(t, simple, "apple", 10)); err != nil {
		t.Fatalf("track: %v", err)
	}

	var nsErr *balloon.NamespaceError
	if err := ow.Track(ctx, compositeFood(t, composite, "apple")); !errors.As(err, &nsErr) {
		t.Fatalf("want NamespaceError, got %v", err)
	}
	if nsErr.Namespace != "Food" || nsErr.Existing != "SimpleFood" || nsErr.Incoming != "CompositeFood" {
		t.Fatalf("namespace details: %+v", nsErr)
	}
	// nothing was persisted for the rejected track
	if names, _ := store.ListNames(ctx, "CompositeFood"); len(names) != 0 {
		t.Fatalf("rejected track must not persist: %v", names)
	}
}

func toyRegistry(t *testing.T) (*balloon.Registry, *balloon.Type, *balloon.Type, *balloon.Type, *balloon.Type) {
	t.Helper()
	reg, food, simple, _ := foodRegistry(t)
	toy := reg.MustRegister(balloon.TypeSpec{Name: "Toy"})
	car := reg.MustRegister(balloon.TypeSpec{
		Name: "ToyCar", Base: toy, Nameable: true,
		Fields: []balloon.Field{{Name: "wheels", Type: balloon.IntType()}},
	})
	return reg, food, simple, toy, car
}

func TestNamespace_DisjointHierarchiesShareNames(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, toy, car := toyRegistry(t)

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food, toy}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	ow, err := closed.Open(ctx, blob.NewMemory())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := ow.Track(ctx, simpleFood(t, simple, "apple", 10)); err != nil {
		t.Fatalf("track food apple: %v", err)
	}
	carApple := balloon.MustNew(car, map[string]balloon.Value{
		"wheels": balloon.Int(4),
	}).MustNamed("apple")
	if err := ow.Track(ctx, carApple); err != nil {
		t.Fatalf("track toy apple: %v", err)
	}

	foods, _ := ow.Balloonist(food)
	toys, _ := ow.Balloonist(toy)
	gotFood, err := foods.Get(ctx, "apple")
	if err != nil || gotFood.Type() != simple {
		t.Fatalf("food apple: %v %v", gotFood, err)
	}
	gotToy, err := toys.Get(ctx, "apple")
	if err != nil || gotToy.Type() != car {
		t.Fatalf("toy apple: %v %v", gotToy, err)
	}
}

func TestTypeOf_AmbiguityAcrossNamespaces(t *testing.T) {
	reg, food, simple, toy, car := toyRegistry(t)
	schema, err := balloon.BuildSchema(reg, []*balloon.Type{food, toy}, nil, nil)
	if err != nil {
		t.Fatalf("BuildSchema: %v", err)
	}
	d := newDynamicTypes(schema, nil)
	if err := d.track("apple", simple); err != nil {
		t.Fatalf("track simple: %v", err)
	}
	if err := d.track("apple", car); err != nil {
		t.Fatalf("track car: %v", err)
	}
	// within either namespace the name is unique
	if got, err := d.TypeOf("apple", food); err != nil || got != simple {
		t.Fatalf("TypeOf within Food: %v %v", got, err)
	}
	// across both, it is fatal
	var amb *balloon.AmbiguityError
	if _, err := d.TypeOf("apple", reg.Root()); !errors.As(err, &amb) {
		t.Fatalf("want AmbiguityError, got %v", err)
	}
	if len(amb.Types) != 2 {
		t.Fatalf("ambiguity details: %+v", amb)
	}
}

func TestPopulate_LayeredWorldLeavesBaselineAlone(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, composite := foodRegistry(t)
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	base, err := closed.OpenDir(ctx, dir1)
	if err != nil {
		t.Fatalf("open base: %v", err)
	}
	if err := base.Track(ctx, simpleFood(t, simple, "apple", 10)); err != nil {
		t.Fatalf("track apple: %v", err)
	}

	// layer a second writable location over the first
	overlay, err := base.World.OpenDir(ctx, dir2)
	if err != nil {
		t.Fatalf("open overlay: %v", err)
	}
	salad := compositeFood(t, composite, "salad", simpleFood(t, simple, "apple", 10))
	if err := overlay.Track(ctx, salad); err != nil {
		t.Fatalf("track salad: %v", err)
	}

	// the apple reference resolved against the baseline, so only the salad
	// was written to the overlay location
	if _, err := os.Stat(filepath.Join(dir2, "CompositeFood", "salad.json")); err != nil {
		t.Fatalf("expected salad blob: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir2, "SimpleFood")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("apple must not be re-persisted in the overlay: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir1, "CompositeFood")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("salad must not leak into the baseline location: %v", err)
	}

	// the overlay sees both, the baseline only the apple
	obl, _ := overlay.Balloonist(food)
	if _, err := obl.Get(ctx, "salad"); err != nil {
		t.Fatalf("overlay get salad: %v", err)
	}
	if _, err := obl.Get(ctx, "apple"); err != nil {
		t.Fatalf("overlay get apple: %v", err)
	}
	bbl, _ := base.Balloonist(food)
	if _, err := bbl.Get(ctx, "salad"); !errors.Is(err, balloon.ErrNotFound) {
		t.Fatalf("baseline must not see the overlay salad: %v", err)
	}
}

func TestPopulate_IsASnapshot(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, _ := foodRegistry(t)
	store := blob.NewMemory()

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	ow, err := closed.Open(ctx, store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ow.Track(ctx, simpleFood(t, simple, "apple", 10)); err != nil {
		t.Fatalf("track: %v", err)
	}

	snapshot, err := closed.Populate(ctx, store)
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	// a later write to the same location is invisible to the snapshot
	if err := ow.Track(ctx, simpleFood(t, simple, "banana", 20)); err != nil {
		t.Fatalf("track banana: %v", err)
	}
	bl, _ := snapshot.Balloonist(food)
	if names := bl.Names(); len(names) != 1 || names[0] != "apple" {
		t.Fatalf("snapshot names: %v", names)
	}
	if _, err := bl.Get(ctx, "banana"); !errors.Is(err, balloon.ErrNotFound) {
		t.Fatalf("snapshot must not see later writes: %v", err)
	}
}

func TestGet_CyclicBlobsRejected(t *testing.T) {
	ctx := context.Background()
	reg := balloon.NewRegistry()
	linked := reg.MustRegister(balloon.TypeSpec{Name: "Linked"})
	reg.MustRegister(balloon.TypeSpec{
		Name: "Node", Base: linked, Nameable: true,
		Fields: []balloon.Field{{Name: "next", Type: balloon.OptionalOf(balloon.RefTo(linked))}},
	})

	store := blob.NewMemory()
	if err := store.Write(ctx, blob.Key{Type: "Node", Name: "a"}, map[string]any{"next": "Node:b"}); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := store.Write(ctx, blob.Key{Type: "Node", Name: "b"}, map[string]any{"next": "Node:a"}); err != nil {
		t.Fatalf("write b: %v", err)
	}

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{linked}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	w, err := closed.Populate(ctx, store)
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	bl, _ := w.Balloonist(linked)
	var cycle *balloon.CycleError
	if _, err := bl.Get(ctx, "a"); !errors.As(err, &cycle) {
		t.Fatalf("want CycleError, got %v", err)
	}
}

func TestGet_MalformedBlobIsFormatError(t *testing.T) {
	ctx := context.Background()
	reg, food, _, _ := foodRegistry(t)
	store := blob.NewMemory()
	if err := store.Write(ctx, blob.Key{Type: "SimpleFood", Name: "apple"}, map[string]any{"calories": "lots"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	w, err := closed.Populate(ctx, store)
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	bl, _ := w.Balloonist(food)
	if _, err := bl.Get(ctx, "apple"); !errors.Is(err, balloon.ErrFormat) {
		t.Fatalf("want format error, got %v", err)
	}
}

func TestBalloonist_Bounds(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, composite := foodRegistry(t)

	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	ow, err := closed.Open(ctx, blob.NewMemory())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// a view bound to SimpleFood cannot see or accept composites
	bl, err := ow.Balloonist(simple)
	if err != nil {
		t.Fatalf("Balloonist: %v", err)
	}
	if err := bl.Track(ctx, compositeFood(t, composite, "salad")); err == nil {
		t.Fatalf("expected out-of-bound rejection")
	}
	if err := bl.Track(ctx, simpleFood(t, simple, "apple", 10)); err != nil {
		t.Fatalf("in-bound track: %v", err)
	}

	// views from a closed world are read-only
	w, err := closed.Populate(ctx, blob.NewMemory())
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	rbl, err := w.Balloonist(food)
	if err != nil {
		t.Fatalf("Balloonist: %v", err)
	}
	if err := rbl.Track(ctx, simpleFood(t, simple, "pear", 5)); err == nil {
		t.Fatalf("expected read-only rejection")
	}
}

func TestOpenWorld_RejectsAnonymous(t *testing.T) {
	ctx := context.Background()
	reg, food, simple, _ := foodRegistry(t)
	closed, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food}})
	if err != nil {
		t.Fatalf("NewClosed: %v", err)
	}
	ow, err := closed.Open(ctx, blob.NewMemory())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	anon := balloon.MustNew(simple, map[string]balloon.Value{"calories": balloon.Int(1)})
	if err := ow.Track(ctx, anon); err == nil {
		t.Fatalf("expected anonymous rejection")
	}
}

func TestNewClosed_SchemaViolationIsConfigError(t *testing.T) {
	reg, food, _, _ := foodRegistry(t)
	empty := reg.MustRegister(balloon.TypeSpec{Name: "Utensil"})
	var cfgErr *balloon.ConfigError
	if _, err := NewClosed(reg, Options{NamespaceTypes: []*balloon.Type{food, empty}}); !errors.As(err, &cfgErr) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}
