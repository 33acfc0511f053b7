package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout bounds a whole Run.
	// Default: 10s
	Timeout time.Duration

	// Concurrency limits how many checks run at once. Zero means no limit.
	Concurrency int

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// Report is the combined outcome of all checks.
type Report struct {
	Status    Status    `json:"status" yaml:"status"`
	CheckedAt time.Time `json:"checked_at" yaml:"checked_at"`
	Checks    []Result  `json:"checks" yaml:"checks"`
}

// Aggregator runs registered checkers and combines their results.
// Checks are reported in registration order.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers []Checker
}

// NewAggregator creates an Aggregator.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Aggregator{config: config}
}

// Register adds checker. Names must be unique.
func (a *Aggregator) Register(checker Checker) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.checkers {
		if c.Name() == checker.Name() {
			return ErrDuplicateChecker
		}
	}
	a.checkers = append(a.checkers, checker)
	return nil
}

// Names returns the registered checker names in order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.checkers))
	for i, c := range a.checkers {
		names[i] = c.Name()
	}
	return names
}

// Check runs the named checker alone.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	var found Checker
	for _, c := range a.checkers {
		if c.Name() == name {
			found = c
			break
		}
	}
	a.mu.RUnlock()

	if found == nil {
		return Result{}, ErrCheckerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return a.run(ctx, found), nil
}

// Run executes every checker concurrently. A checker still running when
// the timeout expires is reported unhealthy with ErrCheckTimeout.
func (a *Aggregator) Run(ctx context.Context) Report {
	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	results := make([]Result, len(checkers))
	g, gctx := errgroup.WithContext(ctx)
	if a.config.Concurrency > 0 {
		g.SetLimit(a.config.Concurrency)
	}
	for i, checker := range checkers {
		g.Go(func() error {
			results[i] = a.run(gctx, checker)
			return nil
		})
	}
	_ = g.Wait()

	return Report{
		Status:    Overall(results),
		CheckedAt: a.config.Now(),
		Checks:    results,
	}
}

// Overall returns the worst status in results. No results is healthy.
func Overall(results []Result) Status {
	status := StatusHealthy
	for _, r := range results {
		status = status.Worse(r.Status)
	}
	return status
}

func (a *Aggregator) run(ctx context.Context, checker Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		done <- checker.Check(ctx)
	}()

	var result Result
	select {
	case result = <-done:
	case <-ctx.Done():
		result = Unhealthy("check timed out", ErrCheckTimeout)
	}
	result.Name = checker.Name()
	result.Duration = time.Since(start)
	return result
}
