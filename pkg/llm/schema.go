package llm

import (
	"encoding/json"
	"fmt"
)

// Schema is a JSON Schema fragment.
type Schema map[string]any

// Object describes an object with the given properties.
func Object(properties map[string]Schema, required ...string) Schema {
	props := make(map[string]any, len(properties))
	for name, p := range properties {
		props[name] = p
	}
	s := Schema{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// String describes a string.
func String(description string) Schema {
	return withDescription(Schema{"type": "string"}, description)
}

// StringEnum describes a string restricted to values.
func StringEnum(description string, values ...string) Schema {
	return withDescription(Schema{"type": "string", "enum": values}, description)
}

// Number describes a number.
func Number(description string) Schema {
	return withDescription(Schema{"type": "number"}, description)
}

// Array describes a list of items.
func Array(items Schema, description string) Schema {
	return withDescription(Schema{"type": "array", "items": items}, description)
}

func withDescription(s Schema, description string) Schema {
	if description != "" {
		s["description"] = description
	}
	return s
}

// IsArray reports whether the schema root is an array.
func (s Schema) IsArray() bool {
	t, _ := s["type"].(string)
	return t == "array"
}

// Properties returns the object properties, or nil.
func (s Schema) Properties() map[string]any {
	props, _ := s["properties"].(map[string]any)
	return props
}

// Required returns the required property names.
func (s Schema) Required() []string {
	switch r := s["required"].(type) {
	case []string:
		return r
	case []any:
		out := make([]string, 0, len(r))
		for _, v := range r {
			if name, ok := v.(string); ok {
				out = append(out, name)
			}
		}
		return out
	default:
		return nil
	}
}

// rootKey holds an array reply inside the wrapper object.
const rootKey = "items"

// ObjectRoot returns a schema whose root is an object. Array schemas are
// wrapped under an "items" property and wrapped reports true, in which case
// the reply must be passed through UnwrapRoot.
func ObjectRoot(s Schema) (root Schema, wrapped bool) {
	if !s.IsArray() {
		return s, false
	}
	return Object(map[string]Schema{rootKey: s}, rootKey), true
}

// UnwrapRoot extracts the array from a reply produced for a wrapped schema.
// A reply that is already an array is returned unchanged.
func UnwrapRoot(reply []byte) ([]byte, error) {
	var decoded any
	if err := json.Unmarshal(reply, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if _, ok := decoded.([]any); ok {
		return reply, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(reply, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	inner, ok := wrapper[rootKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedReply, rootKey)
	}
	return inner, nil
}
