package engine

import (
	"encoding/json"
	"math"
)

// AsInt64 coerces the numeric forms sources produce (json.Number from the
// JSON drivers, int from yaml.v3, float64 from drivers without UseNumber)
// into int64. Floats convert only when they carry no fractional part.
func AsInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return floatToInt64(f)
		}
		return 0, false
	case float64:
		return floatToInt64(t)
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if math.Trunc(f) != f || f < math.MinInt64 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// AsFloat64 coerces the numeric forms sources produce into float64.
func AsFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
