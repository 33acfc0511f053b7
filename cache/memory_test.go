package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_GetSetInvalidate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry, err := store.Get(ctx, KeyCategories)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !entry.IsEmpty() {
		t.Error("fresh store should hold empty entries")
	}

	now := time.Now()
	want := Entry{Data: []byte(`[{"id":1}]`), Timestamp: now, ExpiresAt: now.Add(time.Minute)}
	if err := store.Set(ctx, KeyCategories, want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, _ := store.Get(ctx, KeyCategories)
	if string(got.Data) != string(want.Data) || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("Get = %+v, want %+v", got, want)
	}

	if err := store.Invalidate(ctx, KeyCategories); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	got, _ = store.Get(ctx, KeyCategories)
	if !got.IsEmpty() || !got.Timestamp.IsZero() || !got.ExpiresAt.IsZero() {
		t.Errorf("invalidated entry should be zero, got %+v", got)
	}

	// Idempotent
	if err := store.Invalidate(ctx, KeyCategories); err != nil {
		t.Errorf("second Invalidate should not error, got: %v", err)
	}
}

func TestMemoryStore_UnknownKey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "threads"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get unknown key: got %v, want ErrUnknownKey", err)
	}
	if err := store.Set(ctx, "threads", Entry{}); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set unknown key: got %v, want ErrUnknownKey", err)
	}
	if err := store.Invalidate(ctx, "threads"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Invalidate unknown key: got %v, want ErrUnknownKey", err)
	}
}

func TestMemoryStore_NullDataIsEmpty(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	_ = store.Set(ctx, KeyHotThreads, Entry{Data: []byte("null"), Timestamp: now, ExpiresAt: now.Add(time.Hour)})

	got, _ := store.Get(ctx, KeyHotThreads)
	if !got.IsEmpty() {
		t.Error("JSON null should be stored as empty data")
	}
	if got.Valid(now) {
		t.Error("entry with null data must not be valid")
	}
}

func TestEntry_Valid(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{"empty", Entry{}, false},
		{"fresh", Entry{Data: []byte("[]"), ExpiresAt: now.Add(time.Second)}, true},
		{"expires now", Entry{Data: []byte("[]"), ExpiresAt: now}, false},
		{"expired", Entry{Data: []byte("[]"), ExpiresAt: now.Add(-time.Second)}, false},
		{"nil data future expiry", Entry{ExpiresAt: now.Add(time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				switch j % 3 {
				case 0:
					_ = store.Set(ctx, KeyCategories, Entry{Data: []byte("[]"), ExpiresAt: time.Now().Add(time.Minute)})
				case 1:
					_, _ = store.Get(ctx, KeyCategories)
				case 2:
					_ = store.Invalidate(ctx, KeyCategories)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestValidateKey(t *testing.T) {
	for _, k := range Keys() {
		if err := ValidateKey(k); err != nil {
			t.Errorf("ValidateKey(%q) = %v", k, err)
		}
	}
	if err := ValidateKey(""); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("empty key should be unknown, got %v", err)
	}
}
