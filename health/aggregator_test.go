package health

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fixed(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestStatus(t *testing.T) {
	if StatusHealthy.Worse(StatusDegraded) != StatusDegraded || StatusUnhealthy.Worse(StatusHealthy) != StatusUnhealthy {
		t.Error("Worse")
	}
	if Status(9).String() != "unknown" {
		t.Error("unknown status name")
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    Status
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []Result{Healthy("a"), Healthy("b")}, StatusHealthy},
		{"one degraded", []Result{Healthy("a"), Degraded("b")}, StatusDegraded},
		{"unhealthy wins", []Result{Degraded("a"), Unhealthy("b", nil), Healthy("c")}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.results); got != tt.want {
				t.Errorf("Overall = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_RunKeepsOrder(t *testing.T) {
	checkedAt := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	agg := NewAggregator(AggregatorConfig{Now: func() time.Time { return checkedAt }})
	for _, c := range []Checker{
		fixed("upstream", Healthy("ok")),
		fixed("cache", Degraded("old")),
		fixed("token", Healthy("valid")),
	} {
		if err := agg.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	report := agg.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("Status = %v", report.Status)
	}
	if !report.CheckedAt.Equal(checkedAt) {
		t.Errorf("CheckedAt = %v", report.CheckedAt)
	}
	want := []string{"upstream", "cache", "token"}
	for i, r := range report.Checks {
		if r.Name != want[i] {
			t.Errorf("check %d = %s, want %s", i, r.Name, want[i])
		}
	}
	if strings.Join(agg.Names(), ",") != "upstream,cache,token" {
		t.Errorf("Names = %v", agg.Names())
	}
}

func TestAggregator_RunsConcurrently(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	var running, peak atomic.Int32
	release := make(chan struct{})

	for _, name := range []string{"a", "b", "c"} {
		_ = agg.Register(NewCheckerFunc(name, func(context.Context) Result {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
			return Healthy("")
		}))
	}

	done := make(chan Report)
	go func() { done <- agg.Run(context.Background()) }()

	deadline := time.After(2 * time.Second)
	for peak.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("peak concurrency = %d, want 3", peak.Load())
		case <-time.After(time.Millisecond):
		}
	}
	close(release)
	<-done
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	_ = agg.Register(NewCheckerFunc("hung", func(ctx context.Context) Result {
		time.Sleep(time.Second)
		return Healthy("too late")
	}))
	_ = agg.Register(fixed("fast", Healthy("ok")))

	report := agg.Run(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v", report.Status)
	}
	if !errors.Is(report.Checks[0].Err, ErrCheckTimeout) {
		t.Errorf("hung check err = %v", report.Checks[0].Err)
	}
	if report.Checks[1].Status != StatusHealthy {
		t.Errorf("fast check = %v", report.Checks[1].Status)
	}
}

func TestAggregator_RegisterDuplicate(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	_ = agg.Register(fixed("x", Healthy("")))
	if err := agg.Register(fixed("x", Healthy(""))); !errors.Is(err, ErrDuplicateChecker) {
		t.Errorf("err = %v", err)
	}
}

func TestAggregator_Check(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	_ = agg.Register(fixed("cache", Degraded("old")))

	r, err := agg.Check(context.Background(), "cache")
	if err != nil || r.Status != StatusDegraded || r.Name != "cache" {
		t.Errorf("Check = %+v, %v", r, err)
	}
	if _, err := agg.Check(context.Background(), "nope"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	r := Unhealthy("down", errors.New("refused")).WithDetail("status", 502)
	r.Name = "upstream"
	r.Duration = 1500 * time.Millisecond

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	_ = json.Unmarshal(raw, &got)
	if got["status"] != "unhealthy" || got["error"] != "refused" || got["duration_ms"] != float64(1500) {
		t.Errorf("json = %s", raw)
	}
}
