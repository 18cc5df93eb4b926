// Package reqdecode converts decoded HTTP request data (map[string]any,
// where a JSON body yields float64/[]any/string/bool and a query string
// yields collapsed scalars) into the typed values domain handlers expect,
// raising *envelope.APIError (400 VALIDATION_ERROR) on bad or missing
// input. Shared by every extension's domain package so each one doesn't
// reinvent the same conversions cameraapp needed first.
package reqdecode

import (
	"fmt"

	"github.com/agentext/simhost/internal/envelope"
)

// Vec3 is a generic 3-component float triple, independent of any one
// extension's own vector type.
type Vec3 [3]float64

// Float reads a required numeric field.
func Float(data map[string]any, key string) (float64, error) {
	raw, ok := data[key]
	if !ok {
		return 0, envelope.Validation(fmt.Sprintf("%s is required", key), map[string]any{"param": key})
	}
	f, err := asFloat(raw)
	if err != nil {
		return 0, envelope.Validation(fmt.Sprintf("%s must be numeric", key), map[string]any{"param": key})
	}
	return f, nil
}

// FloatOr reads an optional numeric field, falling back to def.
func FloatOr(data map[string]any, key string, def float64) float64 {
	raw, ok := data[key]
	if !ok {
		return def
	}
	f, err := asFloat(raw)
	if err != nil {
		return def
	}
	return f
}

// FloatPtr reads an optional numeric field as a pointer, nil if absent.
func FloatPtr(data map[string]any, key string) *float64 {
	raw, ok := data[key]
	if !ok {
		return nil
	}
	f, err := asFloat(raw)
	if err != nil {
		return nil
	}
	return &f
}

// String reads a required non-empty string field.
func String(data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok {
		return "", envelope.Validation(fmt.Sprintf("%s is required", key), map[string]any{"param": key})
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", envelope.Validation(fmt.Sprintf("%s must be a non-empty string", key), map[string]any{"param": key})
	}
	return s, nil
}

// StringOr reads an optional string field, falling back to def.
func StringOr(data map[string]any, key, def string) string {
	raw, ok := data[key]
	if !ok {
		return def
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return def
	}
	return s
}

// Bool reads an optional boolean field; query-string decoding yields the
// literal strings "true"/"false" where JSON would yield a bool.
func Bool(data map[string]any, key string, def bool) bool {
	raw, ok := data[key]
	if !ok {
		return def
	}
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	default:
		return def
	}
}

// Vec is a required 3-component vector, accepting a JSON array of numbers
// or a list of numeric strings.
func Vec(data map[string]any, key string) (Vec3, error) {
	raw, ok := data[key]
	if !ok {
		return Vec3{}, envelope.Validation(fmt.Sprintf("%s is required", key), map[string]any{"param": key})
	}
	nums, err := FloatSlice(raw)
	if err != nil || len(nums) != 3 {
		return Vec3{}, envelope.Validation(fmt.Sprintf("%s must have exactly 3 numeric components", key), map[string]any{"param": key})
	}
	return Vec3{nums[0], nums[1], nums[2]}, nil
}

// VecOr is Vec's optional counterpart, falling back to def when key is
// absent.
func VecOr(data map[string]any, key string, def Vec3) (Vec3, error) {
	if _, ok := data[key]; !ok {
		return def, nil
	}
	return Vec(data, key)
}

// VecPtr is Vec's optional counterpart returning nil when key is absent.
func VecPtr(data map[string]any, key string) (*Vec3, error) {
	if _, ok := data[key]; !ok {
		return nil, nil
	}
	v, err := Vec(data, key)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FloatSlice converts a decoded list value into a []float64.
func FloatSlice(raw any) ([]float64, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list")
	}
	out := make([]float64, len(list))
	for i, v := range list {
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// StringSlice converts a decoded list value into a []string.
func StringSlice(data map[string]any, key string) []string {
	raw, ok := data[key]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		if s, ok := raw.(string); ok {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(t, "%g", &f); err != nil {
			return 0, fmt.Errorf("not numeric: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not numeric")
	}
}
