package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/coremem/coremem/pkg/llm"

// CallRecorder receives one observation per model call.
type CallRecorder interface {
	RecordModelCall(provider, operation, status string, duration time.Duration, inputTokens, outputTokens int)
}

// InstrumentedProvider records a span and metrics for every call.
type InstrumentedProvider struct {
	next     Provider
	recorder CallRecorder
	tracer   trace.Tracer
}

// Instrumented wraps next. recorder may be nil.
func Instrumented(next Provider, recorder CallRecorder) *InstrumentedProvider {
	return &InstrumentedProvider{
		next:     next,
		recorder: recorder,
		tracer:   otel.Tracer(tracerName),
	}
}

// Generate forwards the call and records its outcome.
func (p *InstrumentedProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := p.tracer.Start(ctx, "llm.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", p.next.Name()),
			attribute.String("llm.model", p.next.Model()),
			attribute.String("llm.operation", req.Operation),
			attribute.Bool("llm.structured", req.Schema != nil),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := p.next.Generate(ctx, req)
	elapsed := time.Since(start)

	status := "ok"
	var in, out int
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		in, out = resp.InputTokens, resp.OutputTokens
		span.SetAttributes(
			attribute.Int("llm.input_tokens", in),
			attribute.Int("llm.output_tokens", out),
		)
	}

	if p.recorder != nil {
		p.recorder.RecordModelCall(p.next.Name(), req.Operation, status, elapsed, in, out)
	}
	return resp, err
}

func (p *InstrumentedProvider) Name() string  { return p.next.Name() }
func (p *InstrumentedProvider) Model() string { return p.next.Model() }
