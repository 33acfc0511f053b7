package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Cache lookup outcomes recorded by CacheMetrics.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
	CacheError = "error"
)

// Metrics records HTTP round trips made by the API client.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records one round trip. status is 0 when no response arrived.
	RecordRequest(ctx context.Context, meta RequestMeta, status int, duration time.Duration, err error)
}

// CacheMetrics records cache lookups by key and outcome.
type CacheMetrics interface {
	RecordLookup(ctx context.Context, key string, outcome string)
}

// Instruments holds the OpenTelemetry instruments for requests and cache lookups.
type Instruments struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	lookupCount  metric.Int64Counter
}

// NewMetrics creates request and cache instruments on the given meter.
// The returned value implements both Metrics and CacheMetrics.
func NewMetrics(meter metric.Meter) (*Instruments, error) {
	totalCount, err := meter.Int64Counter(
		"forum.http.requests",
		metric.WithDescription("Total number of API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"forum.http.errors",
		metric.WithDescription("API requests that failed or returned a non-2xx status"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"forum.http.duration_ms",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	lookupCount, err := meter.Int64Counter(
		"forum.cache.lookups",
		metric.WithDescription("Cache lookups by key and outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &Instruments{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		lookupCount:  lookupCount,
	}, nil
}

func (m *Instruments) RecordRequest(ctx context.Context, meta RequestMeta, status int, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("http.method", meta.Method),
		attribute.String("http.route", meta.Path),
		attribute.Int("http.status_code", status),
	)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil || status >= 400 {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *Instruments) RecordLookup(ctx context.Context, key string, outcome string) {
	m.lookupCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.key", key),
		attribute.String("cache.outcome", outcome),
	))
}

// NopMetrics returns metrics that record nothing.
func NopMetrics() interface {
	Metrics
	CacheMetrics
} {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(context.Context, RequestMeta, int, time.Duration, error) {}
func (noopMetrics) RecordLookup(context.Context, string, string)                          {}
