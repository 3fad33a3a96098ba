// Package anthropic implements llm.Provider on the Anthropic Messages API.
//
// Structured replies use a single forced tool whose input schema is the
// requested schema; the tool input is the reply document.
package anthropic

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/coremem/coremem/pkg/llm"
)

const (
	// ProviderName is reported by Name.
	ProviderName = "anthropic"
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-5"
	// DefaultMaxTokens caps replies when the request sets no limit.
	DefaultMaxTokens = 2048
)

// Provider calls the Anthropic Messages API.
type Provider struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

type options struct {
	model     string
	baseURL   string
	maxTokens int
	extra     []option.RequestOption
}

// Option configures a Provider.
type Option func(*options)

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithMaxTokens sets the default reply limit.
func WithMaxTokens(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// WithRequestOptions passes extra options to the SDK client.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(o *options) {
		o.extra = append(o.extra, opts...)
	}
}

// New creates a provider. An empty apiKey falls back to ANTHROPIC_API_KEY.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required (set model.api_key or ANTHROPIC_API_KEY)")
	}

	o := &options{model: DefaultModel, maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(o)
	}

	// Retries are left to the caller; each Generate is exactly one request.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}
	reqOpts = append(reqOpts, o.extra...)

	return &Provider{
		client:    anthropic.NewClient(reqOpts...),
		model:     o.model,
		maxTokens: o.maxTokens,
	}, nil
}

func (p *Provider) Name() string  { return ProviderName }
func (p *Provider) Model() string { return p.model }

// Generate sends one message and returns the reply.
func (p *Provider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	params, wrapped := p.buildParams(req)

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &llm.CallError{Provider: ProviderName, Operation: req.Operation, Err: err}
	}

	text, err := replyText(msg, req.Schema != nil)
	if err != nil {
		return nil, err
	}
	if wrapped {
		raw, err := llm.UnwrapRoot([]byte(text))
		if err != nil {
			return nil, err
		}
		text = string(raw)
	}

	return &llm.Response{
		Text:         text,
		Model:        string(msg.Model),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

func (p *Provider) buildParams(req *llm.Request) (anthropic.MessageNewParams, bool) {
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Schema == nil {
		return params, false
	}

	root, wrapped := llm.ObjectRoot(req.Schema)
	name := req.SchemaNameOrDefault()
	params.Tools = []anthropic.ToolUnionParam{{
		OfTool: &anthropic.ToolParam{
			Name:        name,
			Description: anthropic.String("Record the structured result."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: root.Properties(),
				Required:   root.Required(),
			},
		},
	}}
	params.ToolChoice = anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: name},
	}
	return params, wrapped
}

// replyText returns the forced tool input when structured, otherwise the
// concatenated text blocks.
func replyText(msg *anthropic.Message, structured bool) (string, error) {
	var sb strings.Builder
	for _, block := range msg.Content {
		switch block.Type {
		case "tool_use":
			if structured && len(block.Input) > 0 {
				return string(block.Input), nil
			}
		case "text":
			sb.WriteString(block.Text)
		}
	}
	if structured {
		// Some models answer in text despite the forced tool; accept it if it is JSON.
		if text := strings.TrimSpace(sb.String()); strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
			return text, nil
		}
		return "", llm.ErrEmptyReply
	}
	return sb.String(), nil
}
