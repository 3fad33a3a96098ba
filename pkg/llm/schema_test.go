package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaHelpers(t *testing.T) {
	s := Object(map[string]Schema{
		"summary":   String("A short summary."),
		"sentiment": StringEnum("", "positive", "negative"),
		"score":     Number("Score"),
		"tags":      Array(String(""), "Tags"),
	}, "summary", "score")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"summary": {"type": "string", "description": "A short summary."},
			"sentiment": {"type": "string", "enum": ["positive", "negative"]},
			"score": {"type": "number", "description": "Score"},
			"tags": {"type": "array", "items": {"type": "string"}, "description": "Tags"}
		},
		"required": ["summary", "score"]
	}`, string(data))

	assert.False(t, s.IsArray())
	assert.Equal(t, []string{"summary", "score"}, s.Required())
	assert.Len(t, s.Properties(), 4)
}

func TestObjectRoot(t *testing.T) {
	obj := Object(map[string]Schema{"id": String("")})
	root, wrapped := ObjectRoot(obj)
	assert.False(t, wrapped)
	assert.Equal(t, obj, root)

	arr := Array(obj, "")
	root, wrapped = ObjectRoot(arr)
	assert.True(t, wrapped)
	assert.Equal(t, []string{"items"}, root.Required())
	assert.Equal(t, arr, root.Properties()["items"])
}

func TestUnwrapRoot(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"wrapped", `{"items":[{"id":"a"}]}`, `[{"id":"a"}]`, false},
		{"already array", `[1,2]`, `[1,2]`, false},
		{"wrapped non-array passes through", `{"items":{"id":"a"}}`, `{"id":"a"}`, false},
		{"missing key", `{"results":[]}`, "", true},
		{"not json", `nope`, "", true},
		{"scalar", `42`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnwrapRoot([]byte(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedReply)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestRequired_FromDecodedJSON(t *testing.T) {
	var s Schema
	require.NoError(t, json.Unmarshal([]byte(`{"type":"object","required":["a","b"]}`), &s))
	assert.Equal(t, []string{"a", "b"}, s.Required())
}
