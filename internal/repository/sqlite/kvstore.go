package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// kvStore implements domain.KVStore on the kv_entries table.
type kvStore struct {
	db *sql.DB
}

func (s *kvStore) Get(ctx context.Context, key string) (domain.Entry, error) {
	var e domain.Entry
	err := s.db.QueryRowContext(ctx,
		"SELECT value, version FROM kv_entries WHERE entry_key = ?", key,
	).Scan(&e.Value, &e.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Entry{}, domain.ErrNotFound
		}
		return domain.Entry{}, fmt.Errorf("get kv entry: %w", err)
	}
	return e, nil
}

func (s *kvStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (entry_key, value, version, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT (entry_key) DO UPDATE SET value = excluded.value, version = kv_entries.version + 1, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set kv entry: %w", err)
	}
	return nil
}

func (s *kvStore) CompareAndSwap(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	now := time.Now().UTC()

	var (
		result sql.Result
		err    error
	)
	if expectedVersion == 0 {
		result, err = s.db.ExecContext(ctx,
			`INSERT INTO kv_entries (entry_key, value, version, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT (entry_key) DO NOTHING`,
			key, value, now,
		)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE kv_entries SET value = ?, version = version + 1, updated_at = ?
			 WHERE entry_key = ? AND version = ?`,
			value, now, key, expectedVersion,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("write kv entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return 0, domain.ErrConflict
	}
	return expectedVersion + 1, nil
}

func (s *kvStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv_entries WHERE entry_key = ?", key)
	if err != nil {
		return fmt.Errorf("delete kv entry: %w", err)
	}
	return nil
}
