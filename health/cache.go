package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/t0bias84/hagelskott/cache"
)

// CacheConfig configures a CacheChecker.
type CacheConfig struct {
	// MaxStale is how long past expiry an entry may be before the cache is
	// reported degraded.
	// Default: 1h
	MaxStale time.Duration
}

// CacheChecker reports the freshness of every cache entry.
//
// Empty entries are fine (nothing loaded yet). An entry expired for longer
// than MaxStale is degraded, and a store that cannot be read is unhealthy.
type CacheChecker struct {
	loader *cache.Loader
	config CacheConfig
}

// NewCacheChecker creates a CacheChecker.
func NewCacheChecker(loader *cache.Loader, config CacheConfig) *CacheChecker {
	if config.MaxStale <= 0 {
		config.MaxStale = time.Hour
	}
	return &CacheChecker{loader: loader, config: config}
}

// Name implements Checker.
func (c *CacheChecker) Name() string { return "cache" }

// Check implements Checker.
func (c *CacheChecker) Check(ctx context.Context) Result {
	now := c.loader.Now()
	details := make(map[string]any, len(cache.Keys()))
	var stale []string

	for _, key := range cache.Keys() {
		entry, err := c.loader.Entry(ctx, key)
		if err != nil {
			return Unhealthy("cache store unreadable", err)
		}

		switch {
		case entry.IsEmpty():
			details[string(key)] = "empty"
		case entry.Valid(now):
			details[string(key)] = fmt.Sprintf("fresh, age %s", entry.Age(now).Round(time.Second))
		default:
			overdue := now.Sub(entry.ExpiresAt)
			details[string(key)] = fmt.Sprintf("expired %s ago", overdue.Round(time.Second))
			if overdue > c.config.MaxStale {
				stale = append(stale, string(key))
			}
		}
	}

	result := Healthy("cache ok")
	if len(stale) > 0 {
		result = Degraded("stale entries: " + strings.Join(stale, ", "))
	}
	result.Details = details
	return result
}

var _ Checker = (*CacheChecker)(nil)
