package cache

import (
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if got := p.TTL(KeyCategories); got != 5*time.Minute {
		t.Errorf("categories TTL = %v, want 5m", got)
	}
	if got := p.TTL(KeyHotThreads); got != 2*time.Minute {
		t.Errorf("hot threads TTL = %v, want 2m", got)
	}
}

func TestPolicy_WithTTL(t *testing.T) {
	base := DefaultPolicy()
	p := base.WithTTL(KeyHotThreads, 30*time.Second)

	if got := p.TTL(KeyHotThreads); got != 30*time.Second {
		t.Errorf("overridden TTL = %v, want 30s", got)
	}
	if got := base.TTL(KeyHotThreads); got != 2*time.Minute {
		t.Errorf("WithTTL must not modify the receiver, got %v", got)
	}
	if got := base.WithTTL(KeyHotThreads, 0).TTL(KeyHotThreads); got != 2*time.Minute {
		t.Errorf("zero override should be ignored, got %v", got)
	}
}

func TestPolicy_ZeroValue(t *testing.T) {
	var p Policy
	if got := p.TTL(KeyCategories); got != 0 {
		t.Errorf("zero policy TTL = %v, want 0", got)
	}
}
