package apiclient

import (
	"context"
	"errors"
	"sync"
	"time"
)

// BreakerState is the state of a circuit breaker.
type BreakerState int

const (
	// BreakerClosed lets requests through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects requests until the reset timeout elapses.
	BreakerOpen
	// BreakerHalfOpen lets a single probe request through.
	BreakerHalfOpen
)

// String returns the state name.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before a probe.
	// Default: 30s
	ResetTimeout time.Duration

	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	// OnStateChange is called with the lock held; it must not call the breaker.
	OnStateChange func(from, to BreakerState)
}

// Breaker is a circuit breaker over API requests. Network failures and 5xx
// responses count as failures; 4xx responses mean the server is healthy.
type Breaker struct {
	config BreakerConfig

	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
	probing     bool
}

// NewBreaker creates a closed circuit breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Breaker{config: config}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	b.setLocked(BreakerClosed)
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentLocked() {
	case BreakerOpen:
		return ErrCircuitOpen
	case BreakerHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := countsAsFailure(err)
	switch b.state {
	case BreakerClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		b.lastFailure = b.config.Now()
		if b.failures >= b.config.MaxFailures {
			b.setLocked(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.probing = false
		if failed {
			b.lastFailure = b.config.Now()
			b.setLocked(BreakerOpen)
			return
		}
		b.failures = 0
		b.setLocked(BreakerClosed)
	}
}

func (b *Breaker) currentLocked() BreakerState {
	if b.state == BreakerOpen && b.config.Now().Sub(b.lastFailure) >= b.config.ResetTimeout {
		b.probing = false
		b.setLocked(BreakerHalfOpen)
	}
	return b.state
}

func (b *Breaker) setLocked(to BreakerState) {
	from := b.state
	b.state = to
	if from != to && b.config.OnStateChange != nil {
		b.config.OnStateChange(from, to)
	}
}

func countsAsFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	return StatusCode(err) >= 500
}
