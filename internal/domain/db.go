package domain

import "context"

// Database defines lifecycle operations for the underlying storage backend.
// Each implementation (SQLite, Redis, in-memory) owns its own schema setup,
// so the backend is swappable without touching the services.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Entry is a stored value together with its write version.
// Version starts at 1 for a freshly created key and increases on every write.
type Entry struct {
	Value   []byte
	Version int64
}

// KVStore is the persisted key -> JSON blob mapping the services build on.
type KVStore interface {
	// Get returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, value []byte) error
	// CompareAndSwap writes value only if the key is still at expectedVersion
	// (0 meaning the key must not exist) and returns the new version.
	// It returns ErrConflict when another writer got there first.
	CompareAndSwap(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error)
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
