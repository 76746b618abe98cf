package main

import (
	"reflect"
	"sort"
	"testing"

	"balloons/internal/blob"
)

func TestCollectRefs(t *testing.T) {
	known := map[string]struct{}{"SimpleFood": {}, "CompositeFood": {}}
	doc := map[string]any{
		"ingredients": []any{"SimpleFood:apple", "SimpleFood:banana"},
		"garnish": map[string]any{
			"type":   "SimpleFood",
			"fields": map[string]any{"calories": float64(1)},
		},
		"stock": map[string]any{
			"n:SimpleFood:pear": float64(3),
			"shelf":             "top",
		},
		"note":     "not:a-known-type",
		"calories": float64(10),
	}
	got := collectRefs(doc, known)
	sort.Slice(got, func(i, j int) bool { return got[i].String() < got[j].String() })
	want := []blob.Key{
		{Type: "SimpleFood", Name: "apple"},
		{Type: "SimpleFood", Name: "banana"},
		{Type: "SimpleFood", Name: "pear"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("refs: %v, want %v", got, want)
	}
}

func TestCollectRefs_AnonymousKeys(t *testing.T) {
	known := map[string]struct{}{"SimpleFood": {}, "Pantry": {}}
	doc := map[string]any{
		"stock": map[string]any{
			`a:Pantry:{"favourite":"SimpleFood:apple"}`: float64(1),
		},
	}
	got := collectRefs(doc, known)
	if len(got) != 1 || got[0] != (blob.Key{Type: "SimpleFood", Name: "apple"}) {
		t.Fatalf("refs: %v", got)
	}
}

func TestParseRef(t *testing.T) {
	known := map[string]struct{}{"SimpleFood": {}}
	if _, ok := parseRef("SimpleFood:apple", known); !ok {
		t.Fatalf("expected a reference")
	}
	for _, s := range []string{"Unknown:apple", "SimpleFood:", ":apple", "noseparator"} {
		if _, ok := parseRef(s, known); ok {
			t.Fatalf("%q should not parse as a reference", s)
		}
	}
}
