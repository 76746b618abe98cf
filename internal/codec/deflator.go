package codec

import (
	"context"
	"encoding/json"
	"fmt"

	"balloons/pkg/balloon"
)

// Deflator converts values to their structured representations, tracking
// named balloons through their type's tracker before emitting a reference.
type Deflator struct {
	trackers map[*balloon.Type]Tracker
}

// NewDeflator builds a deflator over the given tracker table. The map is
// shared with the caller, which may keep populating it while wiring stores.
func NewDeflator(trackers map[*balloon.Type]Tracker) *Deflator {
	return &Deflator{trackers: trackers}
}

// Deflate converts a value to the wire form: nil, bool, float64/int64,
// string, []any, or map[string]any.
func (d *Deflator) Deflate(ctx context.Context, v balloon.Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case balloon.Int:
		return int64(val), nil
	case balloon.Float:
		return float64(val), nil
	case balloon.String:
		return string(val), nil
	case balloon.Bool:
		return bool(val), nil
	case balloon.Symbol:
		return val.Member, nil
	case balloon.Tuple:
		out := make([]any, len(val))
		for i, e := range val {
			w, err := d.Deflate(ctx, e)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	case balloon.Set:
		elems := val.Elems()
		out := make([]any, len(elems))
		for i, e := range elems {
			w, err := d.Deflate(ctx, e)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	case balloon.Map:
		out := make(map[string]any, val.Len())
		for _, e := range val.Entries() {
			k, err := d.deflateKey(ctx, e.Key)
			if err != nil {
				return nil, err
			}
			w, err := d.Deflate(ctx, e.Value)
			if err != nil {
				return nil, err
			}
			out[k] = w
		}
		return out, nil
	case *balloon.Balloon:
		if val.IsNamed() {
			tracker, ok := d.trackers[val.Type()]
			if !ok {
				return nil, fmt.Errorf("no tracker for type %s", val.Type())
			}
			if err := tracker.Track(ctx, val); err != nil {
				return nil, err
			}
			return val.Type().Name() + ":" + val.Name(), nil
		}
		fields, err := d.DeflateFields(ctx, val)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"type":   val.Type().Name(),
			"fields": fields,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

// DeflateFields deflates just the field map of a balloon, the document shape
// stored in blobs (named balloons store fields only; the name is the key).
func (d *Deflator) DeflateFields(ctx context.Context, b *balloon.Balloon) (map[string]any, error) {
	out := make(map[string]any, len(b.FieldNames()))
	for _, name := range b.FieldNames() {
		v, _ := b.Field(name)
		w, err := d.Deflate(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("field %q of %s: %w", name, b.Type(), err)
		}
		out[name] = w
	}
	return out, nil
}

// deflateKey turns a map key into a string. String and enum keys stay plain;
// balloon keys use a reversible prefixed encoding since the structured form
// requires string keys.
func (d *Deflator) deflateKey(ctx context.Context, key balloon.Value) (string, error) {
	switch k := key.(type) {
	case balloon.String:
		return string(k), nil
	case balloon.Symbol:
		return k.Member, nil
	case *balloon.Balloon:
		if k.IsNamed() {
			tracker, ok := d.trackers[k.Type()]
			if !ok {
				return "", fmt.Errorf("no tracker for type %s", k.Type())
			}
			if err := tracker.Track(ctx, k); err != nil {
				return "", err
			}
			return "n:" + k.Type().Name() + ":" + k.Name(), nil
		}
		fields, err := d.DeflateFields(ctx, k)
		if err != nil {
			return "", err
		}
		encoded, err := json.Marshal(fields)
		if err != nil {
			return "", err
		}
		return "a:" + k.Type().Name() + ":" + string(encoded), nil
	default:
		return "", fmt.Errorf("unsupported map key %T", key)
	}
}
