package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Key names a cache entry. The set of keys is closed; see Keys.
type Key string

const (
	// KeyCategories holds the category listing with thread/post counts.
	KeyCategories Key = "categories"
	// KeyHotThreads holds the trending thread listing.
	KeyHotThreads Key = "hotThreads"
)

var knownKeys = []Key{KeyCategories, KeyHotThreads}

// Sentinel errors for cache operations.
var (
	ErrNilStore   = errors.New("cache: store is nil")
	ErrUnknownKey = errors.New("cache: unknown key")
)

// Keys returns the closed set of cache keys.
func Keys() []Key {
	return slices.Clone(knownKeys)
}

// ValidateKey reports ErrUnknownKey for keys outside the closed set.
func ValidateKey(key Key) error {
	if !slices.Contains(knownKeys, key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// Entry is the cached state of one key.
//
// Data is nil when the entry is empty. Variant records the request
// parameters the data was fetched with; an entry only answers requests
// with the same variant.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Variant   string          `json:"variant,omitempty"`
}

// Valid reports whether the entry holds data that has not expired at now.
func (e Entry) Valid(now time.Time) bool {
	return e.Data != nil && e.ExpiresAt.After(now)
}

// IsEmpty reports whether the entry holds no data at all.
func (e Entry) IsEmpty() bool {
	return e.Data == nil
}

// Age returns how long ago the entry was written. Zero for empty entries.
func (e Entry) Age(now time.Time) time.Duration {
	if e.IsEmpty() || e.Timestamp.IsZero() {
		return 0
	}
	return now.Sub(e.Timestamp)
}

// Store holds exactly one Entry per key.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Get returns the zero Entry (not an error) for a key that was never set.
// - Invalidate is idempotent.
// - Keys outside the closed set fail with ErrUnknownKey.
type Store interface {
	Get(ctx context.Context, key Key) (Entry, error)
	Set(ctx context.Context, key Key, entry Entry) error
	Invalidate(ctx context.Context, key Key) error
}

// normalizeData maps an empty body and JSON null to nil.
func normalizeData(data json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return data
}
