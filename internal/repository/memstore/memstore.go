// Package memstore provides an in-process domain.KVStore.
// It backs the test suites and STORAGE_BACKEND=memory; nothing survives a restart.
package memstore

import (
	"context"
	"sync"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// Store is a mutex-guarded map implementing domain.KVStore and domain.Database.
type Store struct {
	mu      sync.Mutex
	entries map[string]domain.Entry
}

// New creates an empty Store.
func New() *Store {
	return &Store{entries: make(map[string]domain.Entry)}
}

func (s *Store) Get(ctx context.Context, key string) (domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return domain.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return domain.Entry{}, domain.ErrNotFound
	}
	return domain.Entry{Value: clone(e.Value), Version: e.Version}, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	s.entries[key] = domain.Entry{Value: clone(value), Version: e.Version + 1}
	return nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	if e.Version != expectedVersion {
		return 0, domain.ErrConflict
	}
	next := expectedVersion + 1
	s.entries[key] = domain.Entry{Value: clone(value), Version: next}
	return next, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Migrate is a no-op; the map needs no schema.
func (s *Store) Migrate(ctx context.Context) error { return nil }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
