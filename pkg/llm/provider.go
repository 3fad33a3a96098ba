// Package llm defines the boundary to the hosted language model used for
// enrichment, relevance ranking and response synthesis.
//
// A Provider performs exactly one request per Generate call. Decorators in
// this package add rate limiting, circuit breaking and instrumentation; none
// of them retry.
package llm

import "context"

// Operations named on requests, used for metrics and tracing.
const (
	OpEnrich     = "enrich"
	OpRank       = "rank"
	OpSynthesize = "synthesize"
)

// Request is a single model call.
type Request struct {
	// Operation labels the call, e.g. OpEnrich.
	Operation string

	// System is the system instruction. Optional.
	System string

	// Prompt is the user content.
	Prompt string

	// Schema, when set, asks the provider for a JSON reply of that shape.
	// Response.Text then holds the JSON document.
	Schema Schema

	// SchemaName names the structured output, where the provider needs one.
	SchemaName string

	// MaxTokens overrides the provider default when positive.
	MaxTokens int
}

// Response is the model reply.
type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Provider is a language model backend.
type Provider interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
	Name() string
	Model() string
}

// SchemaNameOrDefault returns the request's schema name, or "reply" when unset.
func (r *Request) SchemaNameOrDefault() string {
	if r.SchemaName != "" {
		return r.SchemaName
	}
	return "reply"
}
