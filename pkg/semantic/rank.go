package semantic

import (
	"context"

	"github.com/coremem/coremem/pkg/llm"
	"github.com/coremem/coremem/pkg/memory"
)

// Ranker asks the model which stored memories are relevant to a query.
type Ranker struct {
	provider llm.Provider
}

// NewRanker creates a Ranker.
func NewRanker(provider llm.Provider) *Ranker {
	return &Ranker{provider: provider}
}

// Rank returns the model's judgments for query over memories, unreconciled.
// An empty collection returns no judgments without calling the model.
func (r *Ranker) Rank(ctx context.Context, query string, memories []memory.Memory) ([]memory.Judgment, error) {
	if len(memories) == 0 {
		return nil, nil
	}

	resp, err := r.provider.Generate(ctx, &llm.Request{
		Operation:  llm.OpRank,
		System:     rankSystem,
		Prompt:     rankPrompt(query, memories),
		Schema:     judgmentSchema,
		SchemaName: "relevance_judgments",
	})
	if err != nil {
		return nil, err
	}
	return decodeJudgments(resp.Text)
}

// Search ranks memories and pairs the judgments with them, most relevant first.
func (r *Ranker) Search(ctx context.Context, query string, memories []memory.Memory) ([]memory.SearchResult, error) {
	judgments, err := r.Rank(ctx, query, memories)
	if err != nil {
		return nil, err
	}
	return memory.Reconcile(judgments, memories), nil
}
