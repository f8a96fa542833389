package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/msomdec/memory-gallery/internal/domain"
	"github.com/msomdec/memory-gallery/internal/repository/sqlite"
	"github.com/msomdec/memory-gallery/internal/service"
)

// newTestKV opens a migrated SQLite database in a temp dir.
func newTestKV(t *testing.T) domain.KVStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.Store()
}

func newTestServices(t *testing.T) (*service.AccountDirectory, *service.MemoryStore) {
	t.Helper()
	kv := newTestKV(t)
	accounts := service.NewAccountDirectory(kv)
	return accounts, service.NewMemoryStore(kv, accounts, 0)
}

func seedUser(t *testing.T, accounts *service.AccountDirectory, email string) *domain.User {
	t.Helper()
	u, err := accounts.Register(context.Background(), email, "pw", "Test")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedMemory(t *testing.T, memories *service.MemoryStore, userID, title string) domain.Memory {
	t.Helper()
	m, err := memories.Add(context.Background(), domain.NewMemory{
		UserID:   userID,
		Title:    title,
		Location: "Somewhere",
		Date:     "2024-01-01",
	})
	if err != nil {
		t.Fatalf("seed memory: %v", err)
	}
	return m
}

func ptr[T any](v T) *T { return &v }
