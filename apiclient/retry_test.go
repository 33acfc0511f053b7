package apiclient

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestNewRetrier_Defaults(t *testing.T) {
	r := newRetrier(RetryConfig{})
	if r.config.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1", r.config.MaxAttempts)
	}
	if r.config.InitialDelay != 200*time.Millisecond || r.config.MaxDelay != 5*time.Second || r.config.Multiplier != 2.0 {
		t.Errorf("defaults = %+v", r.config)
	}
}

func TestRetrier_Delay(t *testing.T) {
	r := newRetrier(RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond})
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	for i, w := range want {
		if got := r.delay(i + 1); got != w {
			t.Errorf("delay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestRetrier_Do(t *testing.T) {
	netErr := &NetworkError{Err: errors.New("reset")}

	tests := []struct {
		name      string
		method    string
		err       error
		wantCalls int
	}{
		{"GET network error retried", http.MethodGet, netErr, 3},
		{"DELETE network error retried", http.MethodDelete, netErr, 3},
		{"POST not retried", http.MethodPost, netErr, 1},
		{"PATCH not retried", http.MethodPatch, netErr, 1},
		{"HTTP error not retried", http.MethodGet, &HTTPError{StatusCode: 503}, 1},
		{"open circuit not retried", http.MethodGet, &NetworkError{Err: ErrCircuitOpen}, 1},
		{"cancellation not retried", http.MethodGet, &NetworkError{Err: context.Canceled}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRetrier(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})
			calls := 0
			err := r.do(context.Background(), tt.method, func(context.Context) error {
				calls++
				return tt.err
			})
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetrier_StopsOnCancel(t *testing.T) {
	r := newRetrier(RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	r.onRetry = func(context.Context, int, error, time.Duration) { cancel() }
	err := r.do(ctx, http.MethodGet, func(context.Context) error {
		calls++
		return &NetworkError{Err: errors.New("x")}
	})
	if err == nil || calls != 1 {
		t.Errorf("err=%v calls=%d, want error after one call", err, calls)
	}
}
