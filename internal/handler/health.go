package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// HandleHealthz reports whether the storage backend answers a ping.
// GET /healthz
func HandleHealthz(db domain.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
