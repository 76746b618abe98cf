package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"balloons/pkg/balloon"
)

// Inflator reconstructs values from their structured representations,
// dispatching on the static (declared) field type. Reference strings resolve
// through per-type providers.
type Inflator struct {
	types     TypeTable
	providers map[*balloon.Type]Provider
}

// NewInflator builds an inflator over a type table and provider table. The
// provider map is shared with the caller, which may keep populating it while
// wiring stores.
func NewInflator(types TypeTable, providers map[*balloon.Type]Provider) *Inflator {
	return &Inflator{types: types, providers: providers}
}

// Inflate reconstructs a value of the given static type from its wire form.
// Shape mismatches are format errors wrapping balloon.ErrFormat.
func (inf *Inflator) Inflate(ctx context.Context, wire any, static balloon.FieldType) (balloon.Value, error) {
	switch static.Kind {
	case balloon.KindOptional:
		if wire == nil {
			return nil, nil
		}
		return inf.Inflate(ctx, wire, *static.Elem)

	case balloon.KindInt:
		f, ok := wire.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, formatErr("expected integer, got %v", wire)
		}
		return balloon.Int(int64(f)), nil

	case balloon.KindFloat:
		f, ok := wire.(float64)
		if !ok {
			return nil, formatErr("expected number, got %v", wire)
		}
		return balloon.Float(f), nil

	case balloon.KindString:
		s, ok := wire.(string)
		if !ok {
			return nil, formatErr("expected string, got %v", wire)
		}
		return balloon.String(s), nil

	case balloon.KindBool:
		b, ok := wire.(bool)
		if !ok {
			return nil, formatErr("expected bool, got %v", wire)
		}
		return balloon.Bool(b), nil

	case balloon.KindEnum:
		s, ok := wire.(string)
		if !ok {
			return nil, formatErr("expected enum member of %s, got %v", static.Enum.Name(), wire)
		}
		sym, err := balloon.Member(static.Enum, s)
		if err != nil {
			return nil, formatErr("%v", err)
		}
		return sym, nil

	case balloon.KindTuple:
		items, ok := wire.([]any)
		if !ok {
			return nil, formatErr("expected list, got %v", wire)
		}
		out := make(balloon.Tuple, len(items))
		for i, item := range items {
			v, err := inf.Inflate(ctx, item, *static.Elem)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case balloon.KindSet:
		items, ok := wire.([]any)
		if !ok {
			return nil, formatErr("expected list, got %v", wire)
		}
		elems := make([]balloon.Value, len(items))
		for i, item := range items {
			v, err := inf.Inflate(ctx, item, *static.Elem)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		set, err := balloon.NewSet(elems...)
		if err != nil {
			return nil, formatErr("%v", err)
		}
		return set, nil

	case balloon.KindMap:
		obj, ok := wire.(map[string]any)
		if !ok {
			return nil, formatErr("expected object, got %v", wire)
		}
		entries := make([]balloon.MapEntry, 0, len(obj))
		for k, w := range obj {
			key, err := inf.inflateKey(ctx, k, *static.Key)
			if err != nil {
				return nil, err
			}
			v, err := inf.Inflate(ctx, w, *static.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, balloon.MapEntry{Key: key, Value: v})
		}
		m, err := balloon.NewMap(entries...)
		if err != nil {
			return nil, formatErr("%v", err)
		}
		return m, nil

	case balloon.KindBalloon:
		switch w := wire.(type) {
		case string:
			return inf.resolveReference(ctx, w, static.Balloon)
		case map[string]any:
			return inf.inflateInline(ctx, w, static.Balloon)
		default:
			return nil, formatErr("expected balloon reference or object, got %v", wire)
		}

	default:
		return nil, formatErr("unsupported static type %s", static)
	}
}

// InflateBalloon reconstructs a named balloon of a known concrete type from
// its stored field document. The name is injected, not read from the blob.
func (inf *Inflator) InflateBalloon(ctx context.Context, t *balloon.Type, name string, doc map[string]any) (*balloon.Balloon, error) {
	fields, err := inf.inflateFields(ctx, t, doc)
	if err != nil {
		return nil, err
	}
	b, err := balloon.New(t, fields)
	if err != nil {
		return nil, formatErr("%v", err)
	}
	return b.Named(name)
}

func (inf *Inflator) inflateFields(ctx context.Context, t *balloon.Type, doc map[string]any) (map[string]balloon.Value, error) {
	fields := make(map[string]balloon.Value, len(doc))
	for name, w := range doc {
		ft, ok := t.FieldType(name)
		if !ok {
			return nil, formatErr("type %s has no field %q", t, name)
		}
		v, err := inf.Inflate(ctx, w, ft)
		if err != nil {
			return nil, fmt.Errorf("field %q of %s: %w", name, t, err)
		}
		fields[name] = v
	}
	return fields, nil
}

// resolveReference resolves a "Type:name" string into the named balloon via
// its type's provider.
func (inf *Inflator) resolveReference(ctx context.Context, ref string, static *balloon.Type) (balloon.Value, error) {
	typeName, objectName, ok := strings.Cut(ref, ":")
	if !ok {
		return nil, formatErr("malformed reference %q", ref)
	}
	t, err := inf.resolveType(typeName, static)
	if err != nil {
		return nil, err
	}
	provider, ok := inf.providers[t]
	if !ok {
		return nil, formatErr("no provider for type %s", t)
	}
	return provider.Get(ctx, objectName)
}

// inflateInline reconstructs an anonymous balloon from its
// {"type": ..., "fields": ...} object form.
func (inf *Inflator) inflateInline(ctx context.Context, obj map[string]any, static *balloon.Type) (balloon.Value, error) {
	typeName, ok := obj["type"].(string)
	if !ok {
		return nil, formatErr("inline balloon without type tag: %v", obj)
	}
	doc, ok := obj["fields"].(map[string]any)
	if !ok {
		return nil, formatErr("inline balloon without fields: %v", obj)
	}
	t, err := inf.resolveType(typeName, static)
	if err != nil {
		return nil, err
	}
	fields, err := inf.inflateFields(ctx, t, doc)
	if err != nil {
		return nil, err
	}
	b, err := balloon.New(t, fields)
	if err != nil {
		return nil, formatErr("%v", err)
	}
	return b, nil
}

func (inf *Inflator) resolveType(typeName string, static *balloon.Type) (*balloon.Type, error) {
	t, ok := inf.types.Lookup(typeName)
	if !ok {
		return nil, formatErr("unknown type %q", typeName)
	}
	if !t.IsSubtypeOf(static) {
		return nil, formatErr("%s is not a subtype of %s", t, static)
	}
	return t, nil
}

// inflateKey reverses the deflator's key encoding: plain strings for string
// and enum keys, prefix dispatch on n:/a: for balloon keys.
func (inf *Inflator) inflateKey(ctx context.Context, key string, static balloon.FieldType) (balloon.Value, error) {
	switch static.Kind {
	case balloon.KindString:
		return balloon.String(key), nil
	case balloon.KindEnum:
		sym, err := balloon.Member(static.Enum, key)
		if err != nil {
			return nil, formatErr("%v", err)
		}
		return sym, nil
	case balloon.KindBalloon:
		prefix, rest, ok := strings.Cut(key, ":")
		if !ok {
			return nil, formatErr("malformed balloon key %q", key)
		}
		switch prefix {
		case "n":
			return inf.resolveReference(ctx, rest, static.Balloon)
		case "a":
			typeName, encoded, ok := strings.Cut(rest, ":")
			if !ok {
				return nil, formatErr("malformed anonymous key %q", key)
			}
			var doc map[string]any
			if err := json.Unmarshal([]byte(encoded), &doc); err != nil {
				return nil, formatErr("decode anonymous key %q: %v", key, err)
			}
			return inf.inflateInline(ctx, map[string]any{"type": typeName, "fields": doc}, static.Balloon)
		default:
			return nil, formatErr("unsupported key prefix %q", prefix)
		}
	default:
		return nil, formatErr("unsupported map key type %s", static)
	}
}

func formatErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{balloon.ErrFormat}, args...)...)
}
