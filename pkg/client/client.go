// Package client is a typed HTTP client for the CoreMem API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coremem/coremem/pkg/api/response"
	"github.com/coremem/coremem/pkg/controller"
	"github.com/coremem/coremem/pkg/memory"
)

// DefaultTimeout covers a search, which makes two model calls.
const DefaultTimeout = 3 * time.Minute

// APIError is a non-2xx reply decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (%d %s)", e.Message, e.StatusCode, e.Code)
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// MemoryList is the reply of ListMemories.
type MemoryList struct {
	Memories []memory.Memory `json:"memories"`
	Count    int             `json:"count"`
}

// InteractionList is the reply of ListInteractions.
type InteractionList struct {
	Interactions []memory.Interaction `json:"interactions"`
	Count        int                  `json:"count"`
}

// Status is the reply of the /status endpoint.
type Status struct {
	Status  string            `json:"status"`
	Ready   bool              `json:"ready"`
	Uptime  string            `json:"uptime"`
	Version map[string]string `json:"version"`
	Storage struct {
		Healthy bool   `json:"healthy"`
		Error   string `json:"error,omitempty"`
	} `json:"storage"`
	Model *struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
		Breaker  string `json:"breaker,omitempty"`
	} `json:"model,omitempty"`
	Memories     *int `json:"memories,omitempty"`
	Interactions *int `json:"interactions,omitempty"`
}

// Client talks to a CoreMem server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StoreMemory enriches and stores text.
func (c *Client) StoreMemory(ctx context.Context, text string) (*memory.Memory, error) {
	var m memory.Memory
	if err := c.do(ctx, http.MethodPost, "/api/v1/memories", map[string]string{"text": text}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMemories lists up to limit memories, newest first. A limit of 0 lists all.
func (c *Client) ListMemories(ctx context.Context, limit int) (*MemoryList, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var list MemoryList
	if err := c.do(ctx, http.MethodGet, "/api/v1/memories?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteMemory deletes the memory with id.
func (c *Client) DeleteMemory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/memories/"+url.PathEscape(id), nil, nil)
}

// Stats returns the collection statistics.
func (c *Client) Stats(ctx context.Context) (*memory.MemoryStats, error) {
	var stats memory.MemoryStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Search runs a relevance search and returns the synthesized answer.
func (c *Client) Search(ctx context.Context, query string) (*controller.SearchOutcome, error) {
	var outcome controller.SearchOutcome
	if err := c.do(ctx, http.MethodPost, "/api/v1/search", map[string]string{"query": query}, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// ListInteractions returns the interaction log, newest first.
func (c *Client) ListInteractions(ctx context.Context) (*InteractionList, error) {
	var list InteractionList
	if err := c.do(ctx, http.MethodGet, "/api/v1/interactions", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Reset deletes all memories and interactions.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/state", nil, nil)
}

// Status returns the server status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope response.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			RequestID:  envelope.Error.RequestID,
			Details:    envelope.Error.Details,
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}
