package handler_test

import (
	"net/http"
	"testing"
)

func TestHandleHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.do(t, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %s", ct)
	}

	var body map[string]string
	decode(t, data, &body)
	if body["status"] != "ok" {
		t.Fatalf("expected status=ok, got %s", body["status"])
	}
}

func TestHandleHealthz_StorageDown(t *testing.T) {
	env := newTestEnv(t)
	env.db.Close()

	resp, _ := env.do(t, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
