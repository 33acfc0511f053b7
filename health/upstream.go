package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/t0bias84/hagelskott/apiclient"
)

// Requester is the subset of apiclient.Client the upstream check needs.
type Requester interface {
	Do(ctx context.Context, method, path string, body any, opts ...apiclient.RequestOption) (json.RawMessage, error)
}

// UpstreamConfig configures an UpstreamChecker.
type UpstreamConfig struct {
	// Path is requested with GET.
	// Default: "/api/forum/hot?limit=1"
	Path string

	// SlowThreshold marks a reachable but slow server as degraded.
	// Default: 2s
	SlowThreshold time.Duration
}

// UpstreamChecker reports whether the forum API answers.
//
// A network failure is unhealthy. Any HTTP answer proves the server is up:
// 5xx responses and slow answers are degraded, everything else healthy.
type UpstreamChecker struct {
	client Requester
	config UpstreamConfig
}

// NewUpstreamChecker creates an UpstreamChecker.
func NewUpstreamChecker(client Requester, config UpstreamConfig) *UpstreamChecker {
	if config.Path == "" {
		config.Path = "/api/forum/hot?limit=1"
	}
	if config.SlowThreshold <= 0 {
		config.SlowThreshold = 2 * time.Second
	}
	return &UpstreamChecker{client: client, config: config}
}

// Name implements Checker.
func (c *UpstreamChecker) Name() string { return "upstream" }

// Check implements Checker.
func (c *UpstreamChecker) Check(ctx context.Context) Result {
	start := time.Now()
	_, err := c.client.Do(ctx, http.MethodGet, c.config.Path, nil)
	latency := time.Since(start)

	var (
		result  Result
		netErr  *apiclient.NetworkError
		httpErr *apiclient.HTTPError
	)
	switch {
	case err == nil:
		result = Healthy("api reachable")
	case errors.As(err, &netErr):
		result = Unhealthy(apiclient.MsgCannotReachServer, netErr.Unwrap())
	case errors.As(err, &httpErr) && httpErr.StatusCode >= 500:
		result = Degraded("api answered with a server error").WithDetail("status", httpErr.StatusCode)
	case errors.As(err, &httpErr):
		result = Healthy("api reachable").WithDetail("status", httpErr.StatusCode)
	default:
		result = Unhealthy("request failed", err)
	}

	if result.Status == StatusHealthy && latency > c.config.SlowThreshold {
		result = Degraded("api is slow")
	}
	return result.WithDetail("latency_ms", latency.Milliseconds())
}

var _ Checker = (*UpstreamChecker)(nil)
