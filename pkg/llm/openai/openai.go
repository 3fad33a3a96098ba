// Package openai implements llm.Provider on the OpenAI Chat Completions API
// and compatible gateways.
package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/coremem/coremem/pkg/llm"
)

const (
	// ProviderName is reported by Name.
	ProviderName = "openai"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultMaxTokens caps replies when the request sets no limit.
	DefaultMaxTokens = 2048
)

// Provider calls the Chat Completions API.
type Provider struct {
	client    openai.Client
	model     string
	maxTokens int
}

type options struct {
	model     string
	baseURL   string
	maxTokens int
}

// ProviderOption configures a Provider.
type ProviderOption func(*options)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(o *options) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) ProviderOption {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithMaxTokens sets the default reply limit.
func WithMaxTokens(n int) ProviderOption {
	return func(o *options) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// NewProvider creates a provider. An empty apiKey falls back to OPENAI_API_KEY,
// and an unset base URL to OPENAI_BASE_URL.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set model.api_key or OPENAI_API_KEY)")
	}

	o := &options{model: DefaultModel, maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(o)
	}
	if o.baseURL == "" {
		o.baseURL = os.Getenv("OPENAI_BASE_URL")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}

	return &Provider{
		client:    openai.NewClient(reqOpts...),
		model:     o.model,
		maxTokens: o.maxTokens,
	}, nil
}

func (p *Provider) Name() string  { return ProviderName }
func (p *Provider) Model() string { return p.model }

// Generate sends one chat completion and returns the first choice. A reply
// with no choices is empty text for a plain request and ErrEmptyReply for a
// structured one.
func (p *Provider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	params, wrapped := p.buildParams(req)

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &llm.CallError{Provider: ProviderName, Operation: req.Operation, Err: err}
	}
	var text string
	if len(completion.Choices) > 0 {
		text = completion.Choices[0].Message.Content
	}
	if req.Schema != nil && strings.TrimSpace(text) == "" {
		return nil, llm.ErrEmptyReply
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
		Model:        completion.Model,
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
	}, nil
}

func (p *Provider) buildParams(req *llm.Request) (openai.ChatCompletionNewParams, bool) {
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(p.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}
	if req.Schema == nil {
		return params, false
	}

	// json_schema responses must have an object root.
	root, wrapped := llm.ObjectRoot(req.Schema)
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   req.SchemaNameOrDefault(),
				Schema: map[string]any(root),
				Strict: openai.Bool(false),
			},
		},
	}
	return params, wrapped
}
