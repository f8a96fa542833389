package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/memory-gallery/internal/handler"
	"github.com/msomdec/memory-gallery/internal/repository/sqlite"
	"github.com/msomdec/memory-gallery/internal/service"
)

type testEnv struct {
	srv      *httptest.Server
	db       *sqlite.DB
	accounts *service.AccountDirectory
	memories *service.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, func(*handler.Deps) {})
}

func newTestEnvWith(t *testing.T, configure func(*handler.Deps)) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	kv := db.Store()
	accounts := service.NewAccountDirectory(kv)
	memories := service.NewMemoryStore(kv, accounts, 0)

	deps := handler.Deps{
		DB:       db,
		Accounts: accounts,
		Memories: memories,
	}
	configure(&deps)

	srv := httptest.NewServer(handler.NewRouter(deps))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: db, accounts: accounts, memories: memories}
}

// do sends a request with an optional JSON body and returns the response
// with its body fully read.
func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func (e *testEnv) register(t *testing.T, email, name string) handler.UserDTO {
	t.Helper()
	resp, data := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": "secret", "name": name,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.StatusCode, data)
	}
	var out struct {
		User handler.UserDTO `json:"user"`
	}
	decode(t, data, &out)
	return out.User
}

func (e *testEnv) createMemory(t *testing.T, body map[string]any) handler.MemoryDTO {
	t.Helper()
	resp, data := e.do(t, http.MethodPost, "/api/memories", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create memory: expected 201, got %d: %s", resp.StatusCode, data)
	}
	var out struct {
		Memory handler.MemoryDTO `json:"memory"`
	}
	decode(t, data, &out)
	return out.Memory
}

func decode(t *testing.T, data []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var out map[string]string
	decode(t, data, &out)
	return out["error"]
}

// newTestEnvOnDB serves fresh services over env's database, as a restarted
// process would.
func newTestEnvOnDB(t *testing.T, env *testEnv) *testEnv {
	t.Helper()
	kv := env.db.Store()
	accounts := service.NewAccountDirectory(kv)
	memories := service.NewMemoryStore(kv, accounts, 0)

	srv := httptest.NewServer(handler.NewRouter(handler.Deps{
		DB:       env.db,
		Accounts: accounts,
		Memories: memories,
	}))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: env.db, accounts: accounts, memories: memories}
}
