package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// Value is a single JSON object persisted under one key, or nothing.
type Value[T any] struct {
	kv  domain.KVStore
	key string
}

// NewValue creates a Value bound to key.
func NewValue[T any](kv domain.KVStore, key string) *Value[T] {
	return &Value[T]{kv: kv, key: key}
}

// Load returns the stored object; ok is false if the key is absent.
func (v *Value[T]) Load(ctx context.Context) (T, bool, error) {
	var zero T
	if v.kv == nil {
		return zero, false, fmt.Errorf("%w: no backend configured", domain.ErrStorageUnavailable)
	}

	entry, err := v.kv.Get(ctx, v.key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return zero, false, nil
		}
		return zero, false, backendError(ctx, "read", v.key, err)
	}

	// null is treated the same as an absent key.
	if string(entry.Value) == "null" {
		return zero, false, nil
	}

	var out T
	if err := json.Unmarshal(entry.Value, &out); err != nil {
		return zero, false, unavailable("decode", v.key, err)
	}
	return out, true, nil
}

// Store overwrites the object unconditionally.
func (v *Value[T]) Store(ctx context.Context, val T) error {
	if v.kv == nil {
		return fmt.Errorf("%w: no backend configured", domain.ErrStorageUnavailable)
	}
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", v.key, err)
	}
	if err := v.kv.Set(ctx, v.key, data); err != nil {
		return backendError(ctx, "write", v.key, err)
	}
	return nil
}

// Clear removes the object. Clearing an absent key succeeds.
func (v *Value[T]) Clear(ctx context.Context) error {
	if v.kv == nil {
		return fmt.Errorf("%w: no backend configured", domain.ErrStorageUnavailable)
	}
	if err := v.kv.Delete(ctx, v.key); err != nil {
		return backendError(ctx, "delete", v.key, err)
	}
	return nil
}
