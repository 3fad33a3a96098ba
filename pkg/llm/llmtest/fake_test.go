package llmtest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coremem/coremem/pkg/llm"
)

func TestFake_Scripted(t *testing.T) {
	boom := errors.New("boom")
	f := New().Reply(llm.OpEnrich, `{"summary":"x"}`).Fail(llm.OpRank, boom)

	resp, err := f.Generate(context.Background(), &llm.Request{Operation: llm.OpEnrich, Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"x"}`, resp.Text)

	_, err = f.Generate(context.Background(), &llm.Request{Operation: llm.OpRank})
	assert.ErrorIs(t, err, boom)

	_, err = f.Generate(context.Background(), &llm.Request{Operation: llm.OpSynthesize})
	var callErr *llm.CallError
	assert.True(t, errors.As(err, &callErr))

	assert.Equal(t, 3, f.CallCount(""))
	assert.Equal(t, 1, f.CallCount(llm.OpRank))
	assert.Equal(t, "p", f.Calls()[0].Prompt)
}

func TestFake_CancelledContext(t *testing.T) {
	f := New().Reply(llm.OpEnrich, "{}")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Generate(ctx, &llm.Request{Operation: llm.OpEnrich})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDemo_Enrich(t *testing.T) {
	f := NewDemo()
	resp, err := f.Generate(context.Background(), &llm.Request{
		Operation: llm.OpEnrich,
		Prompt:    `Extract semantic information from the following text: "Had a great dinner with Maria in Lisbon. We walked along the river."`,
	})
	require.NoError(t, err)

	var out struct {
		Entities      []string            `json:"entities"`
		Actions       []string            `json:"actions"`
		NamedEntities []map[string]string `json:"namedEntities"`
		Sentiment     string              `json:"sentiment"`
		Score         float64             `json:"sentimentScore"`
		Summary       string              `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Text), &out))

	assert.Equal(t, "positive", out.Sentiment)
	assert.Greater(t, out.Score, 0.0)
	assert.Contains(t, out.Entities, "dinner")
	assert.Contains(t, out.Actions, "walked")
	assert.Equal(t, "Had a great dinner with Maria in Lisbon.", out.Summary)
	names := []string{}
	for _, ne := range out.NamedEntities {
		names = append(names, ne["name"])
	}
	assert.Contains(t, names, "Maria")
	assert.Contains(t, names, "Lisbon")
}

func TestDemo_Rank(t *testing.T) {
	f := NewDemo()
	prompt := "Query: \"dinner in Lisbon\"\n" +
		"ID: 1 | Summary: Dinner. | Text: Had dinner with Maria in Lisbon\n" +
		"ID: 2 | Summary: Gym. | Text: Went to the gym\n" +
		"ID: 3 | Summary: Trip. | Text: Flew to Lisbon\n" +
		"Identify the relevant memories."

	resp, err := f.Generate(context.Background(), &llm.Request{Operation: llm.OpRank, Prompt: prompt})
	require.NoError(t, err)

	var judgments []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Text), &judgments))
	require.Len(t, judgments, 2)
	assert.Equal(t, "1", judgments[0].ID)
	assert.Equal(t, 1.0, judgments[0].Score)
	assert.Equal(t, "3", judgments[1].ID)
}

func TestDemo_Synthesize(t *testing.T) {
	f := NewDemo()
	resp, err := f.Generate(context.Background(), &llm.Request{
		Operation: llm.OpSynthesize,
		Prompt:    "User query: \"x\"\n\nRelevant memories:\nFlew to Lisbon\n---\nWent to the gym",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Flew to Lisbon")
	assert.NotContains(t, resp.Text, "gym")
}
