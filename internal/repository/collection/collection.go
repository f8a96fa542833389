// Package collection stores JSON-encoded records under a single key of a
// domain.KVStore and serialises concurrent writers with optimistic versioning.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// DefaultMaxAttempts bounds how often Mutate re-runs after losing a CAS race.
const DefaultMaxAttempts = 16

// Collection is an ordered JSON array of T persisted under one key.
type Collection[T any] struct {
	kv          domain.KVStore
	key         string
	maxAttempts int
}

// New creates a Collection bound to key.
func New[T any](kv domain.KVStore, key string) *Collection[T] {
	return &Collection[T]{kv: kv, key: key, maxAttempts: DefaultMaxAttempts}
}

// Key returns the storage key of the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load returns the stored records in storage order.
// An absent key yields an empty, non-nil slice.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	items, _, err := c.load(ctx)
	return items, err
}

// Mutate runs fn over the current records and persists the slice it returns.
// If fn returns an error nothing is written and the error is returned as is.
// When another writer commits in between, the read-modify-write cycle is
// retried with fresh data, so fn may run more than once.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		items, version, err := c.load(ctx)
		if err != nil {
			return err
		}

		next, err := fn(items)
		if err != nil {
			return err
		}
		if next == nil {
			next = []T{}
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.key, err)
		}

		_, err = c.kv.CompareAndSwap(ctx, c.key, data, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return backendError(ctx, "write", c.key, err)
		}
	}
	return fmt.Errorf("write %s: %w after %d attempts", c.key, domain.ErrConflict, c.maxAttempts)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, int64, error) {
	if c.kv == nil {
		return nil, 0, fmt.Errorf("%w: no backend configured", domain.ErrStorageUnavailable)
	}

	entry, err := c.kv.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []T{}, 0, nil
		}
		return nil, 0, backendError(ctx, "read", c.key, err)
	}

	var items []T
	if err := json.Unmarshal(entry.Value, &items); err != nil {
		return nil, 0, unavailable("decode", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, entry.Version, nil
}

// backendError wraps a backend failure as domain.ErrStorageUnavailable.
// Cancellation or deadline of ctx is returned as is: the backend is fine.
func backendError(ctx context.Context, op, key string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return err
	}
	return unavailable(op, key, err)
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStorageUnavailable, op, key, err)
}
