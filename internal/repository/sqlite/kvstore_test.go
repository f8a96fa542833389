package sqlite_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/msomdec/memory-gallery/internal/domain"
)

func TestKVStore_GetNotFound(t *testing.T) {
	kv := newTestDB(t).Store()

	_, err := kv.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKVStore_SetAndGet(t *testing.T) {
	kv := newTestDB(t).Store()
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Set again: %v", err)
	}

	e, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(e.Value) != "two" {
		t.Fatalf("expected value two, got %q", e.Value)
	}
	if e.Version != 2 {
		t.Fatalf("expected version 2, got %d", e.Version)
	}
}

func TestKVStore_CompareAndSwap(t *testing.T) {
	kv := newTestDB(t).Store()
	ctx := context.Background()

	v, err := kv.CompareAndSwap(ctx, "k", []byte("a"), 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v != 1 {
		t.Fatalf("expected version 1, got %d", v)
	}

	if _, err := kv.CompareAndSwap(ctx, "k", []byte("b"), 0); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on second create, got %v", err)
	}
	if _, err := kv.CompareAndSwap(ctx, "k", []byte("b"), 7); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on stale version, got %v", err)
	}

	v, err = kv.CompareAndSwap(ctx, "k", []byte("b"), 1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected version 2, got %d", v)
	}

	e, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(e.Value) != "b" || e.Version != 2 {
		t.Fatalf("unexpected entry %q v%d", e.Value, e.Version)
	}
}

func TestKVStore_Delete(t *testing.T) {
	kv := newTestDB(t).Store()
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete absent key: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestKVStore_OnlyOneConcurrentSwapWins(t *testing.T) {
	kv := newTestDB(t).Store()
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte("base")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := kv.CompareAndSwap(ctx, "k", []byte("mine"), 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflicts != writers-1 {
		t.Fatalf("expected 1 win and %d conflicts, got %d and %d", writers-1, wins, conflicts)
	}
}
