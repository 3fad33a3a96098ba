package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type stubProvider struct {
	mu    sync.Mutex
	calls int
	errs  []error
	resp  *Response
}

func (s *stubProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &Response{Text: "ok"}, nil
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-1" }

func (s *stubProvider) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestRequest_SchemaNameOrDefault(t *testing.T) {
	assert.Equal(t, "reply", (&Request{}).SchemaNameOrDefault())
	assert.Equal(t, "judgments", (&Request{SchemaName: "judgments"}).SchemaNameOrDefault())
}

func TestCallError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &CallError{Provider: "anthropic", Operation: OpRank, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "anthropic rank")
	assert.True(t, IsUnavailable(err))
	assert.False(t, IsUnavailable(ErrEmptyReply))
}

func TestRateLimited(t *testing.T) {
	next := &stubProvider{}
	p := RateLimited(next, 1, 1)
	assert.Equal(t, "stub", p.Name())
	assert.Equal(t, "stub-1", p.Model())

	_, err := p.Generate(context.Background(), &Request{Operation: OpEnrich})
	require.NoError(t, err)

	// The bucket is empty; a short deadline expires while waiting.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Generate(ctx, &Request{Operation: OpEnrich})
	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, 1, next.count())

	p.SetLimit(1000, 10)
	_, err = p.Generate(context.Background(), &Request{Operation: OpEnrich})
	require.NoError(t, err)
	assert.Equal(t, 2, next.count())
}

func TestBreaker(t *testing.T) {
	boom := errors.New("boom")
	next := &stubProvider{errs: []error{boom, boom}}

	var transitions []string
	p := Breaker(next, BreakerSettings{
		MaxRequests:      1,
		Timeout:          time.Hour,
		FailureThreshold: 2,
		OnStateChange: func(provider, from, to string) {
			transitions = append(transitions, provider+":"+from+"->"+to)
		},
	})

	for i := 0; i < 2; i++ {
		_, err := p.Generate(context.Background(), &Request{Operation: OpRank})
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, "open", p.State())
	assert.Equal(t, []string{"stub:closed->open"}, transitions)

	_, err := p.Generate(context.Background(), &Request{Operation: OpRank})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, IsUnavailable(err))
	assert.Equal(t, 2, next.count(), "open breaker must not call the provider")
}

func TestBreaker_CancellationIsNotAFailure(t *testing.T) {
	next := &stubProvider{errs: []error{context.Canceled, context.Canceled, context.Canceled}}
	p := Breaker(next, BreakerSettings{FailureThreshold: 1, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		_, err := p.Generate(context.Background(), &Request{})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", p.State())
}

func TestBreaker_BadRepliesAreNotFailures(t *testing.T) {
	next := &stubProvider{errs: []error{ErrEmptyReply, ErrMalformedReply, ErrEmptyReply}}
	p := Breaker(next, BreakerSettings{FailureThreshold: 1, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		_, err := p.Generate(context.Background(), &Request{Operation: OpRank})
		assert.True(t, IsBadReply(err))
		assert.False(t, IsUnavailable(err))
	}
	assert.Equal(t, "closed", p.State())
}

type recordedCall struct {
	provider, operation, status string
	in, out                     int
}

type fakeRecorder struct {
	calls []recordedCall
}

func (r *fakeRecorder) RecordModelCall(provider, operation, status string, _ time.Duration, in, out int) {
	r.calls = append(r.calls, recordedCall{provider, operation, status, in, out})
}

func TestInstrumented(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	next := &stubProvider{
		errs: []error{nil, errors.New("down")},
		resp: &Response{Text: "{}", InputTokens: 10, OutputTokens: 3},
	}
	rec := &fakeRecorder{}
	p := Instrumented(next, rec)

	_, err := p.Generate(context.Background(), &Request{Operation: OpEnrich})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), &Request{Operation: OpSynthesize})
	require.Error(t, err)

	assert.Equal(t, []recordedCall{
		{"stub", OpEnrich, "ok", 10, 3},
		{"stub", OpSynthesize, "error", 0, 0},
	}, rec.calls)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "llm.generate", spans[0].Name)
}

func TestInstrumented_NilRecorder(t *testing.T) {
	p := Instrumented(&stubProvider{}, nil)
	_, err := p.Generate(context.Background(), &Request{})
	assert.NoError(t, err)
}

type deadlineProvider struct {
	stubProvider
	deadline time.Time
	ok       bool
}

func (d *deadlineProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	d.deadline, d.ok = ctx.Deadline()
	return d.stubProvider.Generate(ctx, req)
}

func TestTimeout(t *testing.T) {
	next := &deadlineProvider{}
	p := Timeout(next, time.Minute)

	_, err := p.Generate(context.Background(), &Request{Operation: "enrich"})
	require.NoError(t, err)
	require.True(t, next.ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), next.deadline, 5*time.Second)
	assert.Equal(t, "stub", p.Name())

	_, err = Timeout(next, 0).Generate(context.Background(), &Request{Operation: "enrich"})
	require.NoError(t, err)
	assert.False(t, next.ok)
}
