// Package breaker guards a storage backend with a circuit breaker so that a
// dead backend fails fast instead of tying up every request until timeout.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// Settings tunes the breaker.
type Settings struct {
	// Name labels the breaker in logs.
	Name string
	// Failures is how many consecutive backend failures open the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before a probe is allowed.
	Timeout time.Duration
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{Name: "storage", Failures: 5, Timeout: 30 * time.Second}
}

// Store is a domain.KVStore that forwards to another one through a breaker.
type Store struct {
	kv domain.KVStore
	cb *gobreaker.CircuitBreaker
}

var _ domain.KVStore = (*Store)(nil)

// New wraps kv. Zero fields in s fall back to DefaultSettings.
func New(kv domain.KVStore, s Settings) *Store {
	def := DefaultSettings()
	if s.Name == "" {
		s.Name = def.Name
	}
	if s.Failures == 0 {
		s.Failures = def.Failures
	}
	if s.Timeout <= 0 {
		s.Timeout = def.Timeout
	}

	return &Store{
		kv: kv,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        s.Name,
			MaxRequests: 1,
			Timeout:     s.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.Failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
			IsSuccessful: isSuccessful,
		}),
	}
}

// isSuccessful reports whether err says nothing about backend health.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// State returns the breaker state: closed, half-open or open.
func (s *Store) State() string {
	return s.cb.State().String()
}

func (s *Store) run(fn func() error) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, s.cb.Name(), err)
	}
	return err
}

func (s *Store) Get(ctx context.Context, key string) (domain.Entry, error) {
	var entry domain.Entry
	err := s.run(func() error {
		var err error
		entry, err = s.kv.Get(ctx, key)
		return err
	})
	return entry, err
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.run(func() error {
		return s.kv.Set(ctx, key, value)
	})
}

func (s *Store) CompareAndSwap(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	var version int64
	err := s.run(func() error {
		var err error
		version, err = s.kv.CompareAndSwap(ctx, key, value, expectedVersion)
		return err
	})
	return version, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.run(func() error {
		return s.kv.Delete(ctx, key)
	})
}
