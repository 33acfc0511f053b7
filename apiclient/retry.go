package apiclient

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryConfig controls retries of failed requests.
//
// Only network failures of idempotent methods are retried; an HTTPError
// means the server answered and is returned immediately.
type RetryConfig struct {
	// MaxAttempts is the number of attempts including the first.
	// Default: 1 (no retry).
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 200ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 5s
	MaxDelay time.Duration

	// Multiplier grows the delay after every retry.
	// Default: 2.0
	Multiplier float64

	// Jitter adds up to 25% random delay.
	Jitter bool
}

type retrier struct {
	config  RetryConfig
	onRetry func(ctx context.Context, attempt int, err error, delay time.Duration)
}

func newRetrier(config RetryConfig) *retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 200 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	return &retrier{config: config}
}

func (r *retrier) do(ctx context.Context, method string, op func(context.Context) error) error {
	attempts := r.config.MaxAttempts
	if !idempotent(method) {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt >= attempts {
			break
		}

		delay := r.delay(attempt)
		if r.onRetry != nil {
			r.onRetry(ctx, attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

func (r *retrier) delay(attempt int) time.Duration {
	delay := time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}
	if r.config.Jitter && delay >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func retryable(err error) bool {
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	return !errors.Is(err, ErrCircuitOpen) && !errors.Is(err, context.Canceled)
}
