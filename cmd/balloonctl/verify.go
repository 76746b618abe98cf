// Verify command scans every stored document for dangling named references.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"balloons/internal/blob"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every named reference resolves to a stored object",
	Long: `Verify reads every document in the store and collects the named
references it contains: bare "Type:name" strings in field position and
"n:Type:name" encoded map keys. A reference is dangling when no blob is
stored under the referenced key. Verification works without the type
schema, so only strings whose type component matches a type present in
the store are treated as references.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd.Context())
	},
}

func runVerify(ctx context.Context) error {
	types, err := store.ListTypes(ctx)
	if err != nil {
		return fmt.Errorf("list types: %w", err)
	}
	known := make(map[string]struct{}, len(types))
	for _, t := range types {
		known[t] = struct{}{}
	}

	refs := make(map[blob.Key][]blob.Key) // referenced key -> referring keys
	scanned := 0
	for _, t := range types {
		names, err := store.ListNames(ctx, t)
		if err != nil {
			return fmt.Errorf("list names for %s: %w", t, err)
		}
		for _, n := range names {
			key := blob.Key{Type: t, Name: n}
			fields, err := store.Read(ctx, key)
			if err != nil {
				return fmt.Errorf("read %s: %w", key, err)
			}
			scanned++
			for _, ref := range collectRefs(fields, known) {
				refs[ref] = append(refs[ref], key)
			}
		}
	}

	var dangling []blob.Key
	for ref := range refs {
		ok, err := store.Exists(ctx, ref)
		if err != nil {
			return fmt.Errorf("check %s: %w", ref, err)
		}
		if !ok {
			dangling = append(dangling, ref)
		}
	}
	sort.Slice(dangling, func(i, j int) bool {
		return dangling[i].String() < dangling[j].String()
	})

	fmt.Printf("scanned %d objects across %d types, %d distinct references\n",
		scanned, len(types), len(refs))
	if len(dangling) == 0 {
		fmt.Println("ok: all references resolve")
		return nil
	}
	for _, ref := range dangling {
		var from []string
		for _, k := range refs[ref] {
			from = append(from, k.String())
		}
		sort.Strings(from)
		fmt.Printf("dangling: %s referenced by %s\n", ref, strings.Join(from, ", "))
	}
	return fmt.Errorf("%d dangling reference(s)", len(dangling))
}

// collectRefs walks a decoded document and returns every named reference
// whose type component is present in the store.
func collectRefs(doc any, known map[string]struct{}) []blob.Key {
	var out []blob.Key
	var walk func(v any)
	walk = func(v any) {
		switch v := v.(type) {
		case string:
			if k, ok := parseRef(v, known); ok {
				out = append(out, k)
			}
		case []any:
			for _, e := range v {
				walk(e)
			}
		case map[string]any:
			for mk, mv := range v {
				if rest, ok := strings.CutPrefix(mk, "n:"); ok {
					if k, ok := parseRef(rest, known); ok {
						out = append(out, k)
					}
				} else if rest, ok := strings.CutPrefix(mk, "a:"); ok {
					// anonymous key: "a:Type:<json fields>", the encoded
					// fields may themselves carry references
					if _, enc, ok := strings.Cut(rest, ":"); ok {
						var inner map[string]any
						if err := json.Unmarshal([]byte(enc), &inner); err == nil {
							walk(inner)
						}
					}
				}
				walk(mv)
			}
		}
	}
	walk(doc)
	return out
}

func parseRef(s string, known map[string]struct{}) (blob.Key, bool) {
	typ, name, ok := strings.Cut(s, ":")
	if !ok || typ == "" || name == "" {
		return blob.Key{}, false
	}
	if _, ok := known[typ]; !ok {
		return blob.Key{}, false
	}
	return blob.Key{Type: typ, Name: name}, true
}
