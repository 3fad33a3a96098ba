package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedProvider throttles calls with a token bucket. Callers wait for a
// token, bounded by their context.
type RateLimitedProvider struct {
	next    Provider
	limiter *rate.Limiter
}

// RateLimited wraps next with a limiter allowing rps calls per second and
// bursts of up to burst calls.
func RateLimited(next Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Generate waits for a token and forwards the call.
func (p *RateLimitedProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &CallError{Provider: p.next.Name(), Operation: req.Operation, Err: err}
	}
	return p.next.Generate(ctx, req)
}

// SetLimit changes the rate and burst, e.g. after a config reload.
func (p *RateLimitedProvider) SetLimit(rps float64, burst int) {
	if burst < 1 {
		burst = 1
	}
	p.limiter.SetLimit(rate.Limit(rps))
	p.limiter.SetBurst(burst)
}

func (p *RateLimitedProvider) Name() string  { return p.next.Name() }
func (p *RateLimitedProvider) Model() string { return p.next.Model() }
