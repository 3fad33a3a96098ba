// Package semantic holds the three model-backed clients: enrichment of new
// memories, relevance ranking of stored memories against a query, and
// synthesis of an answer from the relevant ones.
package semantic

import (
	"context"

	"github.com/coremem/coremem/pkg/llm"
	"github.com/coremem/coremem/pkg/memory"
)

// Enricher extracts annotations from memory text.
type Enricher struct {
	provider llm.Provider
}

// NewEnricher creates an Enricher.
func NewEnricher(provider llm.Provider) *Enricher {
	return &Enricher{provider: provider}
}

// Enrich asks the model for the annotations of text. Callers must reject
// blank text beforehand. Call failures and replies that are not a JSON object
// are returned as errors; individual missing fields take their defaults.
func (e *Enricher) Enrich(ctx context.Context, text string) (memory.Annotations, error) {
	resp, err := e.provider.Generate(ctx, &llm.Request{
		Operation:  llm.OpEnrich,
		Prompt:     enrichPrompt(text),
		Schema:     annotationSchema,
		SchemaName: "memory_annotations",
	})
	if err != nil {
		return memory.Annotations{}, err
	}
	return decodeAnnotations(resp.Text, text)
}
