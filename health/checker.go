package health

import (
	"context"
	"encoding/json"
	"time"
)

// Status is the health of one component or of the whole client.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Worse returns the more severe of s and other.
func (s Status) Worse(other Status) Status {
	if other > s {
		return other
	}
	return s
}

// Result is the outcome of one check.
type Result struct {
	Name     string         `json:"name" yaml:"name"`
	Status   Status         `json:"status" yaml:"status"`
	Message  string         `json:"message,omitempty" yaml:"message,omitempty"`
	Details  map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Duration time.Duration  `json:"-" yaml:"-"`
	Err      error          `json:"-" yaml:"-"`
}

// MarshalJSON adds the duration in milliseconds and the error text.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		DurationMS int64  `json:"duration_ms"`
		Error      string `json:"error,omitempty"`
	}{plain: plain(r), DurationMS: r.Duration.Milliseconds()}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Healthy returns a healthy result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message}
}

// Degraded returns a degraded result.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message}
}

// Unhealthy returns an unhealthy result carrying err.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Err: err}
}

// WithDetail sets one detail entry.
func (r Result) WithDetail(key string, value any) Result {
	details := make(map[string]any, len(r.Details)+1)
	for k, v := range r.Details {
		details[k] = v
	}
	details[key] = value
	r.Details = details
	return r
}

// Checker checks one component.
//
// Contract:
//   - Concurrency: Check may be called concurrently.
//   - Context: Check must return promptly once ctx is done.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a named function checker.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name implements Checker.
func (f *CheckerFunc) Name() string { return f.name }

// Check implements Checker.
func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }

var _ Checker = (*CheckerFunc)(nil)
