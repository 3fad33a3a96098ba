package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures Breaker.
type BreakerSettings struct {
	// MaxRequests is the number of probe calls allowed while half-open.
	MaxRequests uint32
	// Interval clears failure counts while closed. Zero never clears.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that trips it.
	FailureThreshold uint32
	// OnStateChange is called on every transition. Optional.
	OnStateChange func(provider, from, to string)
}

// BreakerProvider stops calling a provider after repeated failures.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// Breaker wraps next with a circuit breaker. Caller cancellations and
// unusable replies do not count as provider failures.
func Breaker(next Provider, s BreakerSettings) *BreakerProvider {
	threshold := s.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || IsBadReply(err)
		},
	}
	if s.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			s.OnStateChange(name, from.String(), to.String())
		}
	}
	return &BreakerProvider{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Generate forwards the call unless the breaker is open.
func (p *BreakerProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	out, err := p.cb.Execute(func() (any, error) {
		return p.next.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &CallError{Provider: p.next.Name(), Operation: req.Operation, Err: ErrCircuitOpen}
		}
		return nil, err
	}
	return out.(*Response), nil
}

// State returns the breaker state: "closed", "half-open" or "open".
func (p *BreakerProvider) State() string {
	return p.cb.State().String()
}

func (p *BreakerProvider) Name() string  { return p.next.Name() }
func (p *BreakerProvider) Model() string { return p.next.Model() }
