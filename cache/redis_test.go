package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// newTestRedisStore connects to HAGEL_TEST_REDIS_URL or skips.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	url := os.Getenv("HAGEL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("HAGEL_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prefix := "hagel:test:" + t.Name() + ":"
	store, client, err := NewRedisStoreFromURL(ctx, url, RedisOptions{Prefix: prefix, Retention: time.Minute})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		for _, k := range Keys() {
			_ = store.Invalidate(context.Background(), k)
		}
		_ = client.Close()
	})
	return store
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	got, err := store.Get(ctx, KeyCategories)
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if !got.IsEmpty() {
		t.Fatal("missing key should be empty")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	want := Entry{Data: []byte(`[{"id":"a"}]`), Timestamp: now, ExpiresAt: now.Add(time.Minute), Variant: "language=sv"}
	if err := store.Set(ctx, KeyCategories, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err = store.Get(ctx, KeyCategories)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Data) != string(want.Data) || got.Variant != want.Variant || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("Get = %+v, want %+v", got, want)
	}

	if err := store.Invalidate(ctx, KeyCategories); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if err := store.Invalidate(ctx, KeyCategories); err != nil {
		t.Fatalf("second Invalidate: %v", err)
	}
	got, _ = store.Get(ctx, KeyCategories)
	if !got.IsEmpty() {
		t.Error("entry should be empty after invalidate")
	}
}

func TestNewRedisStoreFromURL_InvalidURL(t *testing.T) {
	if _, _, err := NewRedisStoreFromURL(context.Background(), "://nope", RedisOptions{}); err == nil {
		t.Fatal("expected error for invalid URL")
	}
}
