package llm

import (
	"context"
	"time"
)

// TimeoutProvider bounds every call with a deadline.
type TimeoutProvider struct {
	next    Provider
	timeout time.Duration
}

// Timeout wraps next so that each call gets at most d. A non-positive d
// disables the bound.
func Timeout(next Provider, d time.Duration) *TimeoutProvider {
	return &TimeoutProvider{next: next, timeout: d}
}

// Generate forwards the call under the deadline.
func (p *TimeoutProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	if p.timeout <= 0 {
		return p.next.Generate(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.next.Generate(ctx, req)
}

func (p *TimeoutProvider) Name() string  { return p.next.Name() }
func (p *TimeoutProvider) Model() string { return p.next.Model() }
