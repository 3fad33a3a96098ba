package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coremem/coremem/pkg/llm"
)

func completionBody(content string) string {
	data, _ := json.Marshal(content)
	return `{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1700000000, "model": "gpt-test",
		"choices": [{"index": 0, "finish_reason": "stop", "logprobs": null,
			"message": {"role": "assistant", "content": ` + string(data) + `, "refusal": null}}],
		"usage": {"prompt_tokens": 11, "completion_tokens": 3, "total_tokens": 14}
	}`
}

func newTestServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		if captured != nil {
			require.NoError(t, json.Unmarshal(data, captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewProvider("")
	assert.Error(t, err)

	p, err := NewProvider("key")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.Model())
	assert.Equal(t, ProviderName, p.Name())
}

func TestGenerate_JSONSchema(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, http.StatusOK, completionBody(`{"items":[{"id":"a","reason":"r","score":1}]}`), &captured)

	p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"), WithModel("gpt-test"))
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), &llm.Request{
		Operation:  llm.OpRank,
		System:     "rank memories",
		Prompt:     "Query: \"x\"",
		SchemaName: "judgments",
		Schema:     llm.Array(llm.Object(map[string]llm.Schema{"id": llm.String("")}), ""),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","reason":"r","score":1}]`, resp.Text)
	assert.Equal(t, 11, resp.InputTokens)
	assert.Equal(t, 3, resp.OutputTokens)

	assert.Equal(t, "gpt-test", captured["model"])
	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])

	format := captured["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	schema := format["json_schema"].(map[string]any)
	assert.Equal(t, "judgments", schema["name"])
	assert.Equal(t, false, schema["strict"])
	root := schema["schema"].(map[string]any)
	assert.Equal(t, "object", root["type"])
}

func TestGenerate_PlainText(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, http.StatusOK, completionBody("You ran a marathon."), &captured)

	p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), &llm.Request{Operation: llm.OpSynthesize, Prompt: "q"})
	require.NoError(t, err)
	assert.Equal(t, "You ran a marathon.", resp.Text)
	assert.NotContains(t, captured, "response_format")
	assert.Len(t, captured["messages"].([]any), 1)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv := newTestServer(t, http.StatusBadGateway, `{"error":{"message":"upstream"}}`, nil)
		p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"))
		require.NoError(t, err)

		_, err = p.Generate(context.Background(), &llm.Request{Operation: llm.OpEnrich, Prompt: "x"})
		var callErr *llm.CallError
		assert.True(t, errors.As(err, &callErr))
	})

	t.Run("blank structured reply", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, completionBody(""), nil)
		p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"))
		require.NoError(t, err)

		_, err = p.Generate(context.Background(), &llm.Request{
			Operation: llm.OpEnrich,
			Prompt:    "x",
			Schema:    llm.Object(map[string]llm.Schema{"summary": llm.String("")}),
		})
		assert.ErrorIs(t, err, llm.ErrEmptyReply)
	})
	t.Run("unparseable wrapped reply", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, completionBody("Sorry, nothing relevant."), nil)
		p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"))
		require.NoError(t, err)

		_, err = p.Generate(context.Background(), &llm.Request{
			Operation: llm.OpRank,
			Prompt:    "x",
			Schema:    llm.Array(llm.Object(map[string]llm.Schema{"id": llm.String("")}), ""),
		})
		assert.ErrorIs(t, err, llm.ErrMalformedReply)
		assert.False(t, llm.IsUnavailable(err))
	})
}

func TestGenerate_NoChoices(t *testing.T) {
	body := `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-test","choices":[],` +
		`"usage":{"prompt_tokens":1,"completion_tokens":0,"total_tokens":1}}`
	srv := newTestServer(t, http.StatusOK, body, nil)
	p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), &llm.Request{Operation: llm.OpSynthesize, Prompt: "q"})
	require.NoError(t, err)
	assert.Empty(t, resp.Text)

	_, err = p.Generate(context.Background(), &llm.Request{
		Operation: llm.OpEnrich,
		Prompt:    "x",
		Schema:    llm.Object(map[string]llm.Schema{"summary": llm.String("")}),
	})
	assert.ErrorIs(t, err, llm.ErrEmptyReply)
}
