package value

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FromAny converts data decoded by encoding/json (or compatible decoders)
// into a Value. Plain map[string]any input loses its original key order,
// so entries are added in sorted key order for determinism; decoders that
// preserve order build objects directly instead.
func FromAny(data any) (Value, error) {
	switch current := data.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return current, nil
	case bool:
		return Bool(current), nil
	case int:
		return Int(current), nil
	case int64:
		return Int(current), nil
	case uint64:
		return Int(int64(current)), nil
	case float64:
		return Float(current), nil
	case json.Number:
		if i, err := current.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := current.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", current, err)
		}
		return Float(f), nil
	case string:
		return String(current), nil
	case []any:
		arr := make(Array, 0, len(current))
		for _, item := range current {
			v, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(current))
		for k := range current {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		obj := NewObject(len(keys))
		for _, k := range keys {
			v, err := FromAny(current[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", data)
	}
}

// ToAny converts a Value into plain Go data suitable for encoding/json.
// Object key order is lost; callers that need ordered output encode the
// Value directly.
func ToAny(v Value) any {
	switch current := v.(type) {
	case Null:
		return nil
	case Bool:
		return bool(current)
	case Int:
		return int64(current)
	case Float:
		return float64(current)
	case String:
		return string(current)
	case Array:
		out := make([]any, 0, len(current))
		for _, item := range current {
			out = append(out, ToAny(item))
		}
		return out
	case *Object:
		out := make(map[string]any, current.Len())
		current.Each(func(key string, item Value) bool {
			out[key] = ToAny(item)
			return true
		})
		return out
	default:
		return nil
	}
}
