package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces cache keys in Redis.
const DefaultRedisPrefix = "hagel:cache:"

// DefaultRetention is how long Redis keeps an entry after it was written.
// It is much longer than any TTL so expired data stays available for the
// stale-on-error fallback.
const DefaultRetention = 24 * time.Hour

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Prefix    string
	Retention time.Duration
}

// RedisStore keeps entries in Redis as JSON so several processes share them.
type RedisStore struct {
	client    redis.Cmdable
	prefix    string
	retention time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.Cmdable, opts RedisOptions) (*RedisStore, error) {
	if client == nil {
		return nil, ErrNilStore
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultRedisPrefix
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	return &RedisStore{client: client, prefix: opts.Prefix, retention: opts.Retention}, nil
}

// NewRedisStoreFromURL parses a redis:// URL, pings the server and returns a store.
func NewRedisStoreFromURL(ctx context.Context, rawURL string, opts RedisOptions) (*RedisStore, *redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("cache: invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	store, err := NewRedisStore(client, opts)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, client, nil
}

func (s *RedisStore) redisKey(key Key) string {
	return s.prefix + string(key)
}

// Get returns the entry for key, or the zero Entry when Redis has none.
func (s *RedisStore) Get(ctx context.Context, key Key) (Entry, error) {
	if err := ValidateKey(key); err != nil {
		return Entry{}, err
	}
	raw, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, fmt.Errorf("cache: redis get %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	entry.Data = normalizeData(entry.Data)
	return entry, nil
}

// Set writes the entry for key with the configured retention.
func (s *RedisStore) Set(ctx context.Context, key Key, entry Entry) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	entry.Data = normalizeData(entry.Data)
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), raw, s.retention).Err(); err != nil {
		return fmt.Errorf("cache: redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate deletes the entry for key. Deleting a missing key is a no-op.
func (s *RedisStore) Invalidate(ctx context.Context, key Key) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("cache: redis del %s: %w", key, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
