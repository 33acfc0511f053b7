package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/t0bias84/hagelskott/observe"
)

// FetchFunc retrieves fresh data for a key. A nil result is a valid
// response (JSON null) and leaves the entry empty.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// Request selects the entry to load.
type Request struct {
	Key Key

	// Variant identifies the request parameters (for example "language=sv").
	Variant string

	// Force skips the validity check and always fetches.
	Force bool
}

// Result is the outcome of Loader.Load.
type Result struct {
	// Data is the cached or freshly fetched payload. May be nil.
	Data json.RawMessage

	// FetchedAt is when Data was fetched from upstream.
	FetchedAt time.Time

	// Stale is true when the fetch failed and Data is a previous snapshot.
	Stale bool

	// Err is the swallowed fetch error when Stale is true.
	Err error

	// Variant is the variant Data was fetched for. A stale result may
	// carry another variant than the one requested.
	Variant string
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// Store holds the entries. Required.
	Store Store

	// Policy sets per-key TTLs. Zero value uses DefaultPolicy.
	Policy Policy

	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	Logger  observe.Logger
	Metrics observe.CacheMetrics
}

// Loader implements read-through caching with stale-on-error fallback.
//
// Concurrent misses for the same key, variant and force flag share one
// fetch. Invalidate advances a per-key generation so that a fetch started
// before the invalidation never writes its result back.
type Loader struct {
	store   Store
	policy  Policy
	now     func() time.Time
	logger  observe.Logger
	metrics observe.CacheMetrics

	group singleflight.Group

	mu  sync.Mutex
	gen map[Key]uint64
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig) (*Loader, error) {
	if cfg.Store == nil {
		return nil, ErrNilStore
	}
	if cfg.Policy.TTLs == nil && cfg.Policy.DefaultTTL == 0 {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NopMetrics()
	}
	return &Loader{
		store:   cfg.Store,
		policy:  cfg.Policy,
		now:     cfg.Now,
		logger:  observe.OrNop(cfg.Logger).With(observe.F("component", "cache")),
		metrics: cfg.Metrics,
		gen:     make(map[Key]uint64),
	}, nil
}

// Load returns the entry for req, fetching it when missing, expired,
// recorded for another variant, or when req.Force is set.
//
// When the fetch fails and the key holds earlier data, that data is
// returned with Result.Stale set and a nil error, preferring data of the
// requested variant. The fetch error is returned only when the key holds
// nothing.
//
// Canceling ctx returns ctx.Err() to this caller only; a fetch shared with
// other callers keeps running for them.
func (l *Loader) Load(ctx context.Context, req Request, fetch FetchFunc) (Result, error) {
	if err := ValidateKey(req.Key); err != nil {
		return Result{}, err
	}

	prior := l.read(ctx, req.Key)
	if !req.Force && prior.Variant == req.Variant && prior.Valid(l.now()) {
		l.metrics.RecordLookup(ctx, string(req.Key), observe.CacheHit)
		return Result{Data: prior.Data, FetchedAt: prior.Timestamp, Variant: prior.Variant}, nil
	}

	gen := l.generation(req.Key)
	flight := fmt.Sprintf("%s|%d|%s|%t", req.Key, gen, req.Variant, req.Force)

	// The shared fetch outlives any single caller; the client's per-attempt
	// timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(flight, func() (any, error) {
		data, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		now := l.now()
		entry := Entry{
			Data:      normalizeData(data),
			Timestamp: now,
			ExpiresAt: now.Add(l.policy.TTL(req.Key)),
			Variant:   req.Variant,
		}
		l.write(fetchCtx, req.Key, gen, entry)
		return entry, nil
	})

	var flightRes singleflight.Result
	select {
	case flightRes = <-ch:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	err, shared := flightRes.Err, flightRes.Shared
	if err == nil {
		entry := flightRes.Val.(Entry)
		l.metrics.RecordLookup(ctx, string(req.Key), observe.CacheMiss)
		if shared {
			l.logger.Debug(ctx, "shared in-flight fetch", observe.F("key", string(req.Key)))
		}
		return Result{Data: entry.Data, FetchedAt: entry.Timestamp, Variant: entry.Variant}, nil
	}

	if fallback, ok := l.fallback(l.read(ctx, req.Key), prior, req.Variant); ok {
		l.metrics.RecordLookup(ctx, string(req.Key), observe.CacheStale)
		l.logger.Warn(ctx, "fetch failed, serving cached data",
			observe.F("key", string(req.Key)),
			observe.F("variant", fallback.Variant),
			observe.F("age_ms", fallback.Age(l.now()).Milliseconds()),
			observe.Err(err),
		)
		return Result{
			Data:      fallback.Data,
			FetchedAt: fallback.Timestamp,
			Stale:     true,
			Err:       err,
			Variant:   fallback.Variant,
		}, nil
	}

	l.metrics.RecordLookup(ctx, string(req.Key), observe.CacheError)
	return Result{}, err
}

// fallback picks the data served when a fetch fails. The current store
// entry wins over the one read before the fetch, since another caller may
// have refreshed it, and data for the requested variant wins over data for
// any other variant.
func (l *Loader) fallback(current, prior Entry, variant string) (Entry, bool) {
	candidates := []Entry{current, prior}
	for _, e := range candidates {
		if !e.IsEmpty() && e.Variant == variant {
			return e, true
		}
	}
	for _, e := range candidates {
		if !e.IsEmpty() {
			return e, true
		}
	}
	return Entry{}, false
}

// Invalidate empties the entry for key. Idempotent.
func (l *Loader) Invalidate(ctx context.Context, key Key) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	l.mu.Lock()
	l.gen[key]++
	l.mu.Unlock()

	if err := l.store.Invalidate(ctx, key); err != nil {
		return fmt.Errorf("cache: invalidate %s: %w", key, err)
	}
	l.logger.Debug(ctx, "cache invalidated", observe.F("key", string(key)))
	return nil
}

// Entry returns the stored entry for key without fetching.
func (l *Loader) Entry(ctx context.Context, key Key) (Entry, error) {
	if err := ValidateKey(key); err != nil {
		return Entry{}, err
	}
	return l.store.Get(ctx, key)
}

// Policy returns the loader's TTL policy.
func (l *Loader) Policy() Policy {
	return l.policy
}

// Now returns the loader's notion of the current time.
func (l *Loader) Now() time.Time {
	return l.now()
}

func (l *Loader) generation(key Key) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen[key]
}

// read treats storage failures as an empty entry so a broken backend
// degrades to always fetching.
func (l *Loader) read(ctx context.Context, key Key) Entry {
	entry, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn(ctx, "cache read failed", observe.F("key", string(key)), observe.Err(err))
		return Entry{}
	}
	return entry
}

func (l *Loader) write(ctx context.Context, key Key, gen uint64, entry Entry) {
	if l.generation(key) != gen {
		l.logger.Debug(ctx, "discarding fetch result after invalidation", observe.F("key", string(key)))
		return
	}
	if err := l.store.Set(ctx, key, entry); err != nil {
		l.logger.Warn(ctx, "cache write failed", observe.F("key", string(key)), observe.Err(err))
	}
}
