package metrics

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"
)

// toFloat64 converts numeric sample values. Durations convert to milliseconds.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case time.Duration:
		return float64(n) / float64(time.Millisecond), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toInt64 converts numeric sample values, truncating fractions.
func toInt64(v any) (int64, bool) {
	if d, ok := v.(time.Duration); ok {
		return d.Milliseconds(), true
	}
	f, ok := toFloat64(v)
	return int64(f), ok
}

// field is one numeric leaf of a structured gauge payload.
type field struct {
	Key   string
	Value float64
}

// numericFields flattens a structured payload into its numeric leaves, sorted
// by key. Nested maps are joined with ".". Non-numeric leaves are skipped.
func numericFields(v any) []field {
	var out []field
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		if m, ok := v.(map[string]any); ok {
			for k, child := range m {
				key := k
				if prefix != "" {
					key = prefix + "." + k
				}
				walk(key, child)
			}
			return
		}
		if f, ok := toFloat64(v); ok {
			out = append(out, field{Key: prefix, Value: f})
		}
	}
	walk("", v)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
