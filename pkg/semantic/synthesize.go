package semantic

import (
	"context"
	"strings"

	"github.com/coremem/coremem/pkg/llm"
)

// Synthesizer writes a natural-language answer grounded in memory texts.
type Synthesizer struct {
	provider llm.Provider
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(provider llm.Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Synthesize answers query from texts, given in relevance order. A blank
// reply becomes FallbackResponse; call failures are returned.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, texts []string) (string, error) {
	resp, err := s.provider.Generate(ctx, &llm.Request{
		Operation: llm.OpSynthesize,
		System:    synthesizeSystem,
		Prompt:    synthesizePrompt(query, texts),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return FallbackResponse, nil
	}
	return resp.Text, nil
}
