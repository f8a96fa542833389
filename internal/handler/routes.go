package handler

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/msomdec/memory-gallery/internal/domain"
	"github.com/msomdec/memory-gallery/internal/metrics"
	"github.com/msomdec/memory-gallery/internal/service"
)

// Deps bundles what the router needs. Limiter and Metrics may be nil to
// disable write rate limiting and /metrics; an empty AllowedOrigins disables
// CORS.
type Deps struct {
	DB             domain.Database
	Accounts       *service.AccountDirectory
	Memories       *service.MemoryStore
	Limiter        *service.WriteLimiter
	Metrics        *metrics.Collector
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(SecurityHeaders)
	if d.Metrics != nil {
		r.Use(Instrument(d.Metrics))
	}
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders:   []string{RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if d.Limiter != nil {
		r.Use(LimitWrites(d.Limiter))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	r.Get("/healthz", HandleHealthz(d.DB))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	auth := NewAuthHandler(d.Accounts)
	memories := NewMemoryHandler(d.Memories, d.Metrics)
	images := NewImageHandler(d.Memories)
	session := func(next http.Handler) http.Handler { return RequireSession(d.Accounts, next) }

	// A memory body may inline an image as base64.
	memoryBody := int64(base64.StdEncoding.EncodedLen(int(d.Memories.MaxImageSize()))) + multipartOverhead

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(maxBody(defaultMaxJSONBody)).Post("/register", auth.HandleRegister)
			r.With(maxBody(defaultMaxJSONBody)).Post("/login", auth.HandleLogin)
			r.Post("/logout", auth.HandleLogout)
			r.With(session).Get("/me", auth.HandleMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(session)

			r.Route("/memories", func(r chi.Router) {
				r.Get("/", memories.HandleList)
				r.With(maxBody(memoryBody)).Post("/", memories.HandleCreate)
				r.Get("/{id}", memories.HandleGet)
				r.With(maxBody(memoryBody)).Patch("/{id}", memories.HandleUpdate)
				r.Delete("/{id}", memories.HandleDelete)
			})

			r.Post("/images", images.HandleUpload)
		})
	})

	return r
}

// defaultMaxJSONBody caps account request bodies.
const defaultMaxJSONBody = 1 << 20 // 1MB

// maxBody caps the request body at n bytes.
func maxBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
