package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"balloons/internal/blob/core"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := core.Key{Type: "SimpleFood", Name: "apple"}

	if _, err := s.Read(ctx, key); !errors.Is(err, core.ErrNoBlob) {
		t.Fatalf("read before write: want ErrNoBlob, got %v", err)
	}
	fields := map[string]any{"calories": float64(10)}
	if err := s.Write(ctx, key, fields); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.Read(ctx, key)
	if err != nil || !reflect.DeepEqual(got, fields) {
		t.Fatalf("read back: %v %v", got, err)
	}
	ok, err := s.Exists(ctx, key)
	if err != nil || !ok {
		t.Fatalf("exists: %v %v", ok, err)
	}
}

func TestStore_ReadIsolatedFromCallerMutation(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := core.Key{Type: "T", Name: "x"}
	fields := map[string]any{"v": float64(1)}
	if err := s.Write(ctx, key, fields); err != nil {
		t.Fatalf("write: %v", err)
	}
	fields["v"] = float64(99)

	got, err := s.Read(ctx, key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got["v"] != float64(1) {
		t.Fatalf("stored value must not track caller mutations: %v", got)
	}
	got["v"] = float64(42)
	again, _ := s.Read(ctx, key)
	if again["v"] != float64(1) {
		t.Fatalf("reads must be independent copies: %v", again)
	}
}

func TestStore_Listings(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []core.Key{
		{Type: "B", Name: "two"},
		{Type: "A", Name: "one"},
		{Type: "B", Name: "one"},
	} {
		if err := s.Write(ctx, k, map[string]any{}); err != nil {
			t.Fatalf("write %s: %v", k, err)
		}
	}
	names, err := s.ListNames(ctx, "B")
	if err != nil || !reflect.DeepEqual(names, []string{"one", "two"}) {
		t.Fatalf("names: %v %v", names, err)
	}
	types, err := s.ListTypes(ctx)
	if err != nil || !reflect.DeepEqual(types, []string{"A", "B"}) {
		t.Fatalf("types: %v %v", types, err)
	}
}
