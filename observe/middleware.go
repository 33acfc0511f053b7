package observe

import (
	"net/http"
	"time"
)

// Middleware instruments HTTP round trips with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: WrapTransport returns a RoundTripper safe for concurrent use
//     when the wrapped transport is.
//   - Errors: transport errors are recorded and returned unchanged.
//   - Ownership: requests and responses pass through unmodified.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  OrNop(logger),
	}
}

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// WrapTransport returns a RoundTripper that instruments next.
// A nil next uses http.DefaultTransport.
func (m *Middleware) WrapTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		meta := RequestMeta{
			Method:    req.Method,
			Path:      req.URL.Path,
			Host:      req.URL.Host,
			RequestID: req.Header.Get("X-Request-ID"),
		}

		ctx, span := m.tracer.StartSpan(req.Context(), meta)
		start := time.Now()

		resp, err := next.RoundTrip(req.WithContext(ctx))

		duration := time.Since(start)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		m.tracer.EndSpan(span, status, err)
		m.metrics.RecordRequest(ctx, meta, status, duration, err)

		fields := []Field{
			F("method", meta.Method),
			F("path", meta.Path),
			F("status", status),
			F("duration_ms", float64(duration.Milliseconds())),
		}
		if meta.RequestID != "" {
			fields = append(fields, F("request_id", meta.RequestID))
		}
		if err != nil {
			fields = append(fields, Err(err))
			m.logger.Debug(ctx, "api request failed", fields...)
		} else {
			m.logger.Debug(ctx, "api request completed", fields...)
		}

		return resp, err
	})
}
