// Package engine holds record-level helpers shared by the root package and
// the codec package: value normalization to the JSON-ish kernel and numeric
// coercion across the forms different sources produce.
package engine

// NormalizeValue converts decoder output (which may contain map[any]any, as
// yaml.v3 produces for mappings with non-string keys) into the JSON-ish
// kernel recursively. Non-string map keys are dropped. Values that are
// already kernel-shaped pass through untouched.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = NormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = NormalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = NormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
