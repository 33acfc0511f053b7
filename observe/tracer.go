package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RequestMeta describes one outgoing API request for telemetry purposes.
type RequestMeta struct {
	Method    string // HTTP method
	Path      string // URL path without query
	Host      string // upstream host (optional)
	RequestID string // X-Request-ID sent upstream (optional)
}

// SpanName returns the deterministic span name: http.client <METHOD> <path>.
func (m RequestMeta) SpanName() string {
	return "http.client " + m.Method + " " + m.Path
}

// Tracer wraps OpenTelemetry tracing with request-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, status int, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", meta.Method),
		attribute.String("url.path", meta.Path),
	}
	if meta.Host != "" {
		attrs = append(attrs, attribute.String("server.address", meta.Host))
	}
	if meta.RequestID != "" {
		attrs = append(attrs, attribute.String("http.request.id", meta.RequestID))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, status int, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	switch {
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	case status >= 500:
		span.SetStatus(codes.Error, "server error")
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopTracer returns a tracer that records nothing.
func NopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
