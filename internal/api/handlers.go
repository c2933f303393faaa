package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/notebook/internal/lifecycle"
	"github.com/starford/notebook/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// NotesRoot handles GET /notes/root.
//
//	@Summary		Canonical notes directory and primary extension
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	RootResponse
//	@Security		BearerAuth
//	@Router			/notes/root [get]
func (h *Handler) NotesRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Root:      h.svc.NotesRoot(),
		Extension: h.svc.PrimaryExtension(),
	})
}

// IsNote handles GET /notes/is-note.
//
//	@Summary		Decide whether a path is a note
//	@Tags			notes
//	@Produce		json
//	@Param			path	query		string	true	"File path"
//	@Success		200		{object}	IsNoteResponse
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/is-note [get]
func (h *Handler) IsNote(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	ok, err := h.svc.IsNote(path)
	if err != nil {
		writeError(w, "is-note", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, IsNoteResponse{Path: path, IsNote: ok})
}

// NotePath handles GET /notes/path.
//
//	@Summary		Path of the note with a given title
//	@Tags			notes
//	@Produce		json
//	@Param			title	query		string	true	"Note title"
//	@Success		200		{object}	PathResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/path [get]
func (h *Handler) NotePath(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	p, err := h.svc.NotePathForTitle(title)
	if err != nil {
		writeError(w, "note path", err, slog.String("title", title))
		return
	}
	writeJSON(w, http.StatusOK, PathResponse{Title: title, Path: p})
}

// OpenNote handles POST /notes/open.
//
//	@Summary		Open a note by title, creating it if missing
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenNoteRequest	true	"Title"
//	@Success		200		{object}	OpenResult
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/open [post]
func (h *Handler) OpenNote(w http.ResponseWriter, r *http.Request) {
	var req OpenNoteRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.OpenNote(r.Context(), req.Title)
	if err != nil {
		writeError(w, "open note", err, slog.String("title", req.Title))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// OpenInterlink handles POST /notes/interlink.
//
//	@Summary		Open the note linked under the cursor
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		InterlinkRequest	true	"Cursor line and column"
//	@Success		200		{object}	OpenResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/interlink [post]
func (h *Handler) OpenInterlink(w http.ResponseWriter, r *http.Request) {
	var req InterlinkRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.OpenInterlink(r.Context(), req.Line, req.Col)
	if err != nil {
		writeError(w, "open interlink", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Search handles GET /search.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Titles handles GET /titles.
//
//	@Summary		Fuzzy-find notes by title
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	false	"Pattern"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	TitlesResponse
//	@Security		BearerAuth
//	@Router			/titles [get]
func (h *Handler) Titles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	titles, err := h.svc.FindTitles(r.Context(), q, limit)
	if err != nil {
		writeError(w, "titles", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, TitlesResponse{Titles: titles})
}

// Ready handles GET /ready.
//
//	@Summary		Whether the document store finished its initial sync
//	@Tags			search
//	@Produce		json
//	@Success		200	{object}	ReadyResponse
//	@Security		BearerAuth
//	@Router			/ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ReadyResponse{Ready: h.svc.Ready()})
}

// SaveBuffers handles POST /buffers/save (window unload or window blur).
//
//	@Summary		Autosave modified note buffers
//	@Tags			buffers
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BuffersRequest	true	"Open buffers"
//	@Success		200		{object}	BufferResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/buffers/save [post]
func (h *Handler) SaveBuffers(w http.ResponseWriter, r *http.Request) {
	var req BuffersRequest
	if !decodeLimit(w, r, &req, maxBufferBodyBytes) {
		return
	}
	rec := &lifecycle.Recorder{}
	if err := h.svc.SaveBuffers(lifecycle.Buffers(req.Buffers), rec); err != nil {
		writeError(w, "save buffers", err)
		return
	}
	writeJSON(w, http.StatusOK, BufferResponse{Notifications: nonNil(rec.Drain())})
}

// BlurBuffer handles POST /buffers/blur.
//
//	@Summary		Autosave the buffer whose editor lost focus
//	@Tags			buffers
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BufferRequest	true	"Buffer"
//	@Success		200		{object}	BufferResponse
//	@Failure		400		{object}	errResponse
//	@Failure		413		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/buffers/blur [post]
func (h *Handler) BlurBuffer(w http.ResponseWriter, r *http.Request) {
	var req BufferRequest
	if !decodeLimit(w, r, &req, maxBufferBodyBytes) {
		return
	}
	rec := &lifecycle.Recorder{}
	if err := h.svc.BlurBuffer(req.Buffer, rec); err != nil {
		writeError(w, "blur buffer", err, slog.String("path", req.Buffer.Path))
		return
	}
	writeJSON(w, http.StatusOK, BufferResponse{Notifications: nonNil(rec.Drain())})
}

// DeleteBuffer handles POST /buffers/delete.
//
//	@Summary		Delete the file behind an empty note buffer
//	@Tags			buffers
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BufferRequest	true	"Buffer"
//	@Success		200		{object}	BufferResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/buffers/delete [post]
func (h *Handler) DeleteBuffer(w http.ResponseWriter, r *http.Request) {
	var req BufferRequest
	if !decodeLimit(w, r, &req, maxBufferBodyBytes) {
		return
	}
	rec := &lifecycle.Recorder{}
	deleted := h.svc.DeleteBuffer(req.Buffer, rec)
	writeJSON(w, http.StatusOK, BufferResponse{Deleted: deleted, Notifications: nonNil(rec.Drain())})
}

// DestroyBuffer handles POST /buffers/destroy.
//
//	@Summary		Buffer is closing: delete it when empty, save it otherwise
//	@Tags			buffers
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BufferRequest	true	"Buffer"
//	@Success		200		{object}	BufferResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/buffers/destroy [post]
func (h *Handler) DestroyBuffer(w http.ResponseWriter, r *http.Request) {
	var req BufferRequest
	if !decodeLimit(w, r, &req, maxBufferBodyBytes) {
		return
	}
	rec := &lifecycle.Recorder{}
	if err := h.svc.DestroyBuffer(req.Buffer, rec); err != nil {
		writeError(w, "destroy buffer", err, slog.String("path", req.Buffer.Path))
		return
	}
	writeJSON(w, http.StatusOK, BufferResponse{Notifications: nonNil(rec.Drain())})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
