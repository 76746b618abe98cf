package balloon

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CanonicalKey renders a value into a deterministic, injective string. Sets
// and maps use it to order and deduplicate their elements, and diagnostics
// use it to render conflicting values. It is not the wire encoding; the codec
// has its own reversible key scheme for serialized map keys.
func CanonicalKey(v Value) (string, error) {
	var sb strings.Builder
	if err := writeKey(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeKey(sb *strings.Builder, v Value) error {
	if v == nil {
		sb.WriteString("z")
		return nil
	}
	switch val := v.(type) {
	case Int:
		fmt.Fprintf(sb, "i:%d", int64(val))
	case Float:
		sb.WriteString("f:")
		sb.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 64))
	case String:
		fmt.Fprintf(sb, "s:%q", string(val))
	case Bool:
		fmt.Fprintf(sb, "b:%t", bool(val))
	case Symbol:
		fmt.Fprintf(sb, "e:%s:%s", val.Enum.Name(), val.Member)
	case Tuple:
		sb.WriteString("t:[")
		for i, e := range val {
			if i > 0 {
				sb.WriteString(",")
			}
			if err := writeKey(sb, e); err != nil {
				return err
			}
		}
		sb.WriteString("]")
	case Set:
		sb.WriteString("S:[")
		for i, e := range val.elems {
			if i > 0 {
				sb.WriteString(",")
			}
			if err := writeKey(sb, e); err != nil {
				return err
			}
		}
		sb.WriteString("]")
	case Map:
		sb.WriteString("m:{")
		for i, e := range val.entries {
			if i > 0 {
				sb.WriteString(",")
			}
			if err := writeKey(sb, e.Key); err != nil {
				return err
			}
			sb.WriteString("=")
			if err := writeKey(sb, e.Value); err != nil {
				return err
			}
		}
		sb.WriteString("}")
	case *Balloon:
		if val.IsNamed() {
			fmt.Fprintf(sb, "n:%s:%s", val.typ.Name(), val.name)
			return nil
		}
		fmt.Fprintf(sb, "a:%s:{", val.typ.Name())
		names := make([]string, 0, len(val.fields))
		for name := range val.fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(name)
			sb.WriteString("=")
			if err := writeKey(sb, val.fields[name]); err != nil {
				return err
			}
		}
		sb.WriteString("}")
	default:
		return fmt.Errorf("balloon: unsupported value %T", v)
	}
	return nil
}
