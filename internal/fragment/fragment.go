package fragment

import (
	"github.com/google/uuid"
)

// Fragment is the unit of content threaded through a task execution. Actions
// mutate it in place; it is never shared between executions of different
// fragments.
type Fragment struct {
	ID            string         `json:"id" yaml:"id"`
	Type          string         `json:"type" yaml:"type"`
	Body          string         `json:"body" yaml:"body"`
	Configuration map[string]any `json:"configuration" yaml:"configuration"`
	Payload       map[string]any `json:"payload" yaml:"payload"`
}

// New creates a fragment with a generated id and an empty payload.
func New(fragmentType, body string, configuration map[string]any) *Fragment {
	if configuration == nil {
		configuration = map[string]any{}
	}
	return &Fragment{
		ID:            uuid.NewString(),
		Type:          fragmentType,
		Body:          body,
		Configuration: configuration,
		Payload:       map[string]any{},
	}
}

// AppendPayload stores value under key and returns the fragment for chaining.
func (f *Fragment) AppendPayload(key string, value any) *Fragment {
	if f.Payload == nil {
		f.Payload = map[string]any{}
	}
	f.Payload[key] = value
	return f
}

// MergeInPayload copies every top-level key of payload into the fragment's
// payload, overwriting existing keys.
func (f *Fragment) MergeInPayload(payload map[string]any) {
	for k, v := range payload {
		f.AppendPayload(k, v)
	}
}

// Clone returns a deep copy of the fragment. Nested maps and slices are
// copied so the clone can be mutated independently.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return nil
	}
	return &Fragment{
		ID:            f.ID,
		Type:          f.Type,
		Body:          f.Body,
		Configuration: copyMap(f.Configuration),
		Payload:       copyMap(f.Payload),
	}
}

// ConfigString returns the string configuration value under key, or "".
func (f *Fragment) ConfigString(key string) string {
	if f.Configuration == nil {
		return ""
	}
	s, _ := f.Configuration[key].(string)
	return s
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CopyValue(v)
	}
	return out
}

// CopyValue deep-copies nested maps and slices; other values are returned as is.
func CopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CopyValue(e)
		}
		return out
	default:
		return v
	}
}
