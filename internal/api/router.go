package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notebook/internal/noteservice"
)

// NewRouter creates a chi router with all bridge routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Note identity.
	r.Get("/notes/root", h.NotesRoot)
	r.Get("/notes/is-note", h.IsNote)
	r.Get("/notes/path", h.NotePath)
	r.Post("/notes/open", h.OpenNote)
	r.Post("/notes/interlink", h.OpenInterlink)

	// Search.
	r.Get("/search", h.Search)
	r.Get("/titles", h.Titles)
	r.Get("/ready", h.Ready)

	// Buffer lifecycle triggers.
	r.Post("/buffers/save", h.SaveBuffers)
	r.Post("/buffers/blur", h.BlurBuffer)
	r.Post("/buffers/delete", h.DeleteBuffer)
	r.Post("/buffers/destroy", h.DestroyBuffer)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
