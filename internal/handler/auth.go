package handler

import (
	"net/http"

	"github.com/msomdec/memory-gallery/internal/service"
)

// AuthHandler handles account and session HTTP requests.
type AuthHandler struct {
	accounts *service.AccountDirectory
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *service.AccountDirectory) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// HandleLogin signs in an existing user by email.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"user": {...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "login user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleRegister creates an account and signs it in.
// POST /api/auth/register
// Request:  {"email":"...","password":"...","name":"..."}
// Response: {"user": {...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, r, "register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleLogout clears the current session. Logging out while signed out is
// not an error.
// POST /api/auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context()); err != nil {
		writeServiceError(w, r, "logout user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed-in user.
// GET /api/auth/me
// Response: {"user": {...}} or 401
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}
