package health

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/t0bias84/hagelskott/apiclient"
	"github.com/t0bias84/hagelskott/cache"
)

type stubRequester struct {
	err   error
	delay time.Duration
	path  string
}

func (s *stubRequester) Do(_ context.Context, _ string, path string, _ any, _ ...apiclient.RequestOption) (json.RawMessage, error) {
	s.path = path
	time.Sleep(s.delay)
	return nil, s.err
}

func TestUpstreamChecker(t *testing.T) {
	tests := []struct {
		name  string
		stub  *stubRequester
		slow  time.Duration
		want  Status
		wants string
	}{
		{"reachable", &stubRequester{}, 0, StatusHealthy, "api reachable"},
		{"network failure", &stubRequester{err: &apiclient.NetworkError{Err: errors.New("refused")}}, 0, StatusUnhealthy, apiclient.MsgCannotReachServer},
		{"server error", &stubRequester{err: &apiclient.HTTPError{StatusCode: 503}}, 0, StatusDegraded, "api answered with a server error"},
		{"client error still up", &stubRequester{err: &apiclient.HTTPError{StatusCode: 401}}, 0, StatusHealthy, "api reachable"},
		{"slow", &stubRequester{delay: 20 * time.Millisecond}, time.Millisecond, StatusDegraded, "api is slow"},
		{"other error", &stubRequester{err: errors.New("bad path")}, 0, StatusUnhealthy, "request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewUpstreamChecker(tt.stub, UpstreamConfig{SlowThreshold: tt.slow})
			r := c.Check(context.Background())
			if r.Status != tt.want || r.Message != tt.wants {
				t.Errorf("Check = %v %q, want %v %q", r.Status, r.Message, tt.want, tt.wants)
			}
			if _, ok := r.Details["latency_ms"]; !ok {
				t.Error("latency detail missing")
			}
			if tt.stub.path != "/api/forum/hot?limit=1" {
				t.Errorf("path = %q", tt.stub.path)
			}
		})
	}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestCacheChecker(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	loader, err := cache.NewLoader(cache.LoaderConfig{Store: cache.NewMemoryStore(), Now: clock.Now})
	if err != nil {
		t.Fatal(err)
	}
	checker := NewCacheChecker(loader, CacheConfig{MaxStale: 30 * time.Minute})
	ctx := context.Background()

	r := checker.Check(ctx)
	if r.Status != StatusHealthy || r.Details["categories"] != "empty" {
		t.Fatalf("empty cache = %+v", r)
	}

	fetch := func(context.Context) (json.RawMessage, error) { return json.RawMessage(`[]`), nil }
	_, _ = loader.Load(ctx, cache.Request{Key: cache.KeyCategories}, fetch)
	if r := checker.Check(ctx); r.Status != StatusHealthy {
		t.Errorf("fresh cache = %+v", r)
	}

	clock.now = clock.now.Add(cache.DefaultCategoriesTTL + time.Hour)
	r = checker.Check(ctx)
	if r.Status != StatusDegraded || r.Message != "stale entries: categories" {
		t.Errorf("stale cache = %+v", r)
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, cache.Key) (cache.Entry, error) {
	return cache.Entry{}, errors.New("redis: connection refused")
}
func (brokenStore) Set(context.Context, cache.Key, cache.Entry) error { return nil }
func (brokenStore) Invalidate(context.Context, cache.Key) error       { return nil }

func TestCacheChecker_UnreadableStore(t *testing.T) {
	loader, _ := cache.NewLoader(cache.LoaderConfig{Store: brokenStore{}})
	r := NewCacheChecker(loader, CacheConfig{}).Check(context.Background())
	if r.Status != StatusUnhealthy || r.Err == nil {
		t.Errorf("Check = %+v", r)
	}
}
