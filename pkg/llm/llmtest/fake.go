// Package llmtest provides an in-process llm.Provider for tests and local demos.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/coremem/coremem/pkg/llm"
)

// Handler produces the reply for one request.
type Handler func(ctx context.Context, req *llm.Request) (*llm.Response, error)

// Fake is a scripted provider. Replies are chosen by request operation.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []llm.Request
	model    string
}

// New returns a Fake with nothing scripted. Unscripted operations fail.
func New() *Fake {
	return &Fake{handlers: make(map[string]Handler), model: "fake"}
}

// Reply scripts a fixed text reply for op.
func (f *Fake) Reply(op, text string) *Fake {
	return f.Handle(op, func(context.Context, *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: text, Model: f.model}, nil
	})
}

// Fail scripts an error for op.
func (f *Fake) Fail(op string, err error) *Fake {
	return f.Handle(op, func(context.Context, *llm.Request) (*llm.Response, error) {
		return nil, err
	})
}

// Handle scripts a custom handler for op.
func (f *Fake) Handle(op string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[op] = h
	return f
}

// Generate records the request and runs the handler scripted for its operation.
func (f *Fake) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, *req)
	h, ok := f.handlers[req.Operation]
	f.mu.Unlock()

	if !ok {
		return nil, &llm.CallError{Provider: f.Name(), Operation: req.Operation, Err: fmt.Errorf("no reply scripted")}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h(ctx, req)
}

// Calls returns a copy of every request received.
func (f *Fake) Calls() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]llm.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many requests were made for op. An empty op counts all.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if op == "" {
		return len(f.calls)
	}
	n := 0
	for _, c := range f.calls {
		if c.Operation == op {
			n++
		}
	}
	return n
}

func (f *Fake) Name() string  { return "fake" }
func (f *Fake) Model() string { return f.model }
