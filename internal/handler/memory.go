package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/msomdec/memory-gallery/internal/domain"
	"github.com/msomdec/memory-gallery/internal/metrics"
	"github.com/msomdec/memory-gallery/internal/service"
)

// MemoryHandler serves the signed-in user's memories. Every lookup is scoped
// to that user, so another user's memory answers 404 exactly like a missing one.
type MemoryHandler struct {
	memories *service.MemoryStore
	metrics  *metrics.Collector
}

// NewMemoryHandler creates a new MemoryHandler. m may be nil.
func NewMemoryHandler(memories *service.MemoryStore, m *metrics.Collector) *MemoryHandler {
	return &MemoryHandler{memories: memories, metrics: m}
}

// HandleList returns the user's memories in the requested order.
// GET /api/memories?sort=newest|oldest|location|title
// Response: {"memories": [...]}
func (h *MemoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	order := domain.ParseSortOrder(r.URL.Query().Get("sort"))

	memories, err := h.memories.ListForUserSorted(r.Context(), user.ID, order)
	if err != nil {
		writeServiceError(w, r, "list memories", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"memories": toMemoryDTOs(memories),
	})
}

// HandleCreate adds a memory owned by the signed-in user.
// POST /api/memories
// Response: {"memory": {...}}
func (h *MemoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req createMemoryRequest
	if err := readJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	m, err := h.memories.Add(r.Context(), domain.NewMemory{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	})
	if err != nil {
		writeServiceError(w, r, "create memory", err)
		return
	}
	h.metrics.MemoryCreated()

	writeJSON(w, http.StatusCreated, map[string]any{
		"memory": toMemoryDTO(m),
	})
}

// HandleGet returns one of the user's memories.
// GET /api/memories/{id}
func (h *MemoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	m, ok, err := h.memories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "get memory", err)
		return
	}
	if !ok || m.UserID != user.ID {
		writeError(w, http.StatusNotFound, "Memory not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"memory": toMemoryDTO(m),
	})
}

// HandleUpdate applies a partial update to one of the user's memories.
// PATCH /api/memories/{id}
func (h *MemoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req updateMemoryRequest
	if err := readJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	m, ok, err := h.memories.UpdateForUser(r.Context(), user.ID, chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		writeServiceError(w, r, "update memory", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Memory not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"memory": toMemoryDTO(m),
	})
}

// HandleDelete removes one of the user's memories.
// DELETE /api/memories/{id}
// Response: 204 No Content
func (h *MemoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	ok, err := h.memories.RemoveForUser(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "delete memory", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Memory not found.")
		return
	}
	h.metrics.MemoryDeleted()

	w.WriteHeader(http.StatusNoContent)
}
