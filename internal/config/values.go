package config

import (
	"fmt"
	"time"
)

// Int reads an integer option from an opaque config blob, accepting the
// numeric types decoders produce. Missing keys yield def.
func Int(blob map[string]any, key string, def int) (int, error) {
	raw, ok := blob[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("option '%s' must be a number, got %T", key, raw)
	}
}

// Millis reads a duration option expressed in milliseconds.
func Millis(blob map[string]any, key string, def time.Duration) (time.Duration, error) {
	ms, err := Int(blob, key, int(def/time.Millisecond))
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// String reads a string option. Missing keys yield def.
func String(blob map[string]any, key, def string) (string, error) {
	raw, ok := blob[key]
	if !ok || raw == nil {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("option '%s' must be a string, got %T", key, raw)
	}
	return s, nil
}

// Bool reads a boolean option. Missing keys yield def.
func Bool(blob map[string]any, key string, def bool) (bool, error) {
	raw, ok := blob[key]
	if !ok || raw == nil {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("option '%s' must be a bool, got %T", key, raw)
	}
	return b, nil
}

// StringSlice reads a list of strings. Missing keys yield def.
func StringSlice(blob map[string]any, key string, def []string) ([]string, error) {
	raw, ok := blob[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("option '%s' must contain only strings, got %T", key, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("option '%s' must be a list of strings, got %T", key, raw)
	}
}

// Map reads a nested object option. Missing keys yield an empty map.
func Map(blob map[string]any, key string) (map[string]any, error) {
	raw, ok := blob[key]
	if !ok || raw == nil {
		return map[string]any{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("option '%s' must be an object, got %T", key, raw)
	}
	return m, nil
}
