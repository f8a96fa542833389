package handler

import (
	"errors"
	"net/http"

	"github.com/msomdec/memory-gallery/internal/service"
)

// multipartOverhead is the allowance for form boundaries and headers on top
// of the image itself.
const multipartOverhead = 64 << 10

// ImageHandler turns uploaded image files into data URIs that can be stored
// on a memory.
type ImageHandler struct {
	memories *service.MemoryStore
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(memories *service.MemoryStore) *ImageHandler {
	return &ImageHandler{memories: memories}
}

// HandleUpload encodes a multipart image upload. Nothing is persisted; the
// returned imageUrl is meant for a following create or update.
// POST /api/images (form field "image")
// Response: {"image": {"imageUrl": "data:...", "contentType": "...", "size": n}}
func (h *ImageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	limit := h.memories.MaxImageSize() + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image file provided.")
		return
	}
	defer file.Close()

	img, err := h.memories.EncodeImage(r.Context(), file)
	if err != nil {
		writeServiceError(w, r, "encode image", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"image": ImageDTO{
			ImageURL:    img.DataURI,
			ContentType: img.ContentType,
			Size:        img.Size,
		},
	})
}
