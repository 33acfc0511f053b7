package observe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/t0bias84/hagelskott/observe/exporters"
)

// Config selects which telemetry signals are exported and where.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // otlp|stdout|none
	SamplePct float64 // 0.0-1.0
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
}

// LoggingConfig configures the logger Telemetry creates when the caller
// does not bring its own.
type LoggingConfig struct {
	Enabled bool
	Level   string // debug|info|warn|error
}

// Validate checks exporter names, the sample ratio and the log level.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if c.Tracing.Enabled {
		if !slices.Contains(ValidTracingExporters, c.Tracing.Exporter) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Tracing.Exporter)
		}
		if c.Tracing.SamplePct < 0 || c.Tracing.SamplePct > 1.0 {
			return fmt.Errorf("%w: got %f", ErrInvalidSamplePct, c.Tracing.SamplePct)
		}
	}
	if c.Metrics.Enabled && !slices.Contains(ValidMetricsExporters, c.Metrics.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Metrics.Exporter)
	}
	if c.Logging.Enabled && !slices.Contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	return nil
}

// Enabled reports whether any signal is exported.
func (c *Config) Enabled() bool {
	return c.Tracing.Enabled || c.Metrics.Enabled
}

// Telemetry owns the OpenTelemetry providers for one CLI invocation.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - Context: Shutdown honors cancellation and flushes pending exports.
//   - Errors: Shutdown joins the errors of every provider.
type Telemetry struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger Logger

	mu sync.Mutex
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewTelemetry installs the configured providers as the otel globals.
// Disabled signals get no-op providers.
func NewTelemetry(ctx context.Context, cfg Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	t := &Telemetry{
		tracer: tracenoop.NewTracerProvider().Tracer(cfg.ServiceName),
		meter:  noop.NewMeterProvider().Meter(cfg.ServiceName),
		logger: NopLogger(),
	}

	if cfg.Tracing.Enabled {
		exp, err := exporters.NewTracingExporter(ctx, cfg.Tracing.Exporter)
		if err != nil {
			return nil, fmt.Errorf("observe: tracing: %w", err)
		}
		t.tp = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler(cfg.Tracing.SamplePct)),
			sdktrace.WithBatcher(exp),
		)
		otel.SetTracerProvider(t.tp)
		t.tracer = t.tp.Tracer(cfg.ServiceName)
	}

	if cfg.Metrics.Enabled {
		reader, err := exporters.NewMetricsReader(ctx, cfg.Metrics.Exporter)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, fmt.Errorf("observe: metrics: %w", err)
		}
		t.mp = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(reader))
		otel.SetMeterProvider(t.mp)
		t.meter = t.mp.Meter(cfg.ServiceName)
	}

	if cfg.Logging.Enabled {
		t.logger = NewLogger(cfg.Logging.Level)
	}
	return t, nil
}

// sampler maps a ratio onto a sampler; the bounds avoid ratio sampling
// overhead for the common all-or-nothing settings.
func sampler(pct float64) sdktrace.Sampler {
	switch {
	case pct >= 1.0:
		return sdktrace.AlwaysSample()
	case pct <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(pct))
	}
}

func (t *Telemetry) Tracer() trace.Tracer { return t.tracer }

func (t *Telemetry) Meter() metric.Meter { return t.meter }

func (t *Telemetry) Logger() Logger { return t.logger }

// Middleware builds request instruments on the meter and returns them
// together with a transport Middleware. A nil logger uses the Telemetry
// logger.
func (t *Telemetry) Middleware(logger Logger) (*Middleware, *Instruments, error) {
	inst, err := NewMetrics(t.meter)
	if err != nil {
		return nil, nil, fmt.Errorf("observe: instruments: %w", err)
	}
	if logger == nil {
		logger = t.logger
	}
	return NewMiddleware(NewTracer(t.tracer), inst, logger), inst, nil
}

// Shutdown flushes and stops the providers. Calling it again is a no-op.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		t.tp = nil
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		t.mp = nil
	}
	return errors.Join(errs...)
}
