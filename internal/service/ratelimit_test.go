package service

import (
	"testing"
	"time"
)

func newTestLimiter(rate, capacity float64) (*WriteLimiter, *time.Time) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewWriteLimiter(rate, capacity)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestWriteLimiter_AllowsUpToCapacity(t *testing.T) {
	l, _ := newTestLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("client") {
			t.Fatalf("write %d should be allowed (bucket not yet empty)", i+1)
		}
	}
	if l.Allow("client") {
		t.Fatal("4th write should be denied (bucket empty)")
	}
}

func TestWriteLimiter_Refills(t *testing.T) {
	l, clock := newTestLimiter(2, 1)

	if !l.Allow("client") {
		t.Fatal("first write should be allowed")
	}
	if l.Allow("client") {
		t.Fatal("second write should be denied")
	}

	*clock = clock.Add(500 * time.Millisecond)
	if !l.Allow("client") {
		t.Fatal("write after refill should be allowed")
	}
}

func TestWriteLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 1)

	if !l.Allow("a") {
		t.Fatal("a first write should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("a second write should be denied")
	}
	if !l.Allow("b") {
		t.Fatal("b first write should be allowed (independent bucket)")
	}
}

func TestWriteLimiter_Prune(t *testing.T) {
	l, clock := newTestLimiter(1, 1)
	l.Allow("old")
	*clock = clock.Add(20 * time.Minute)
	l.Allow("fresh")

	if n := l.Prune(10 * time.Minute); n != 1 {
		t.Fatalf("expected 1 pruned bucket, got %d", n)
	}
	if _, ok := l.buckets["fresh"]; !ok {
		t.Fatal("fresh bucket should survive pruning")
	}
}
