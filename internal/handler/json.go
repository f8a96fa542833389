package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// readJSON decodes the request body into the given destination.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeDecodeError reports a body that could not be read as JSON. Bodies cut
// off by http.MaxBytesReader are reported as too large.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request body.")
}

// writeServiceError maps a domain error to an HTTP status. Expected failures
// carry their message to the client; anything else is logged and hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrDecode):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "An account with that email already exists.")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.WarnContext(r.Context(), action, "error", err, "request_id", GetRequestID(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "The request was cancelled before it completed.")
	case errors.Is(err, domain.ErrStorageUnavailable), errors.Is(err, domain.ErrConflict):
		slog.ErrorContext(r.Context(), action, "error", err, "request_id", GetRequestID(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "Storage is temporarily unavailable. Please try again.")
	default:
		slog.ErrorContext(r.Context(), action, "error", err, "request_id", GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}
