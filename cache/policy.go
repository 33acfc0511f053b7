package cache

import (
	"maps"
	"time"
)

// Default TTLs per key.
const (
	DefaultCategoriesTTL = 5 * time.Minute
	DefaultHotThreadsTTL = 2 * time.Minute
)

// Policy configures how long each key stays valid.
type Policy struct {
	// TTLs maps keys to their time to live.
	TTLs map[Key]time.Duration

	// DefaultTTL applies to keys missing from TTLs.
	// If zero, such keys expire immediately and every lookup refetches.
	DefaultTTL time.Duration
}

// DefaultPolicy returns 5 minutes for categories and 2 minutes for hot threads.
func DefaultPolicy() Policy {
	return Policy{
		TTLs: map[Key]time.Duration{
			KeyCategories: DefaultCategoriesTTL,
			KeyHotThreads: DefaultHotThreadsTTL,
		},
		DefaultTTL: DefaultCategoriesTTL,
	}
}

// TTL returns the time to live for key.
func (p Policy) TTL(key Key) time.Duration {
	if ttl, ok := p.TTLs[key]; ok && ttl > 0 {
		return ttl
	}
	if p.DefaultTTL > 0 {
		return p.DefaultTTL
	}
	return 0
}

// WithTTL returns a copy of p with key's TTL replaced. Non-positive ttl is ignored.
func (p Policy) WithTTL(key Key, ttl time.Duration) Policy {
	if ttl <= 0 {
		return p
	}
	out := Policy{TTLs: make(map[Key]time.Duration, len(p.TTLs)+1), DefaultTTL: p.DefaultTTL}
	maps.Copy(out.TTLs, p.TTLs)
	out.TTLs[key] = ttl
	return out
}
