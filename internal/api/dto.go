package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notebook/internal/docstore"
	"github.com/starford/notebook/internal/lifecycle"
	"github.com/starford/notebook/internal/noteservice"
)

// OpenNoteRequest is the request body for opening a note by title.
type OpenNoteRequest struct {
	Title string `json:"title" example:"Groceries" validate:"required"`
}

// InterlinkRequest carries the cursor line and column (in characters).
type InterlinkRequest struct {
	Line string `json:"line" example:"see [[Groceries]]" validate:"required"`
	Col  int    `json:"col" example:"7"`
}

func (r InterlinkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Line, validation.Required),
		validation.Field(&r.Col, validation.Min(0)),
	)
}

// BufferRequest carries one buffer snapshot.
type BufferRequest struct {
	Buffer *lifecycle.Snapshot `json:"buffer" validate:"required"`
}

func (r BufferRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Buffer, validation.Required),
	)
}

// BuffersRequest carries every open buffer snapshot.
type BuffersRequest struct {
	Buffers []*lifecycle.Snapshot `json:"buffers" validate:"required"`
}

func (r BuffersRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Buffers, validation.Required, validation.Each(validation.NotNil)),
	)
}

// BufferResponse reports the outcome of a buffer trigger and any
// notifications it raised for the user.
type BufferResponse struct {
	Deleted       bool                     `json:"deleted"`
	Notifications []lifecycle.Notification `json:"notifications"`
}

// RootResponse is returned by GET /notes/root.
type RootResponse struct {
	Root      string `json:"root" example:"/home/me/notes" validate:"required"`
	Extension string `json:"extension" example:".md" validate:"required"`
}

// IsNoteResponse is returned by GET /notes/is-note.
type IsNoteResponse struct {
	Path   string `json:"path" validate:"required"`
	IsNote bool   `json:"is_note"`
}

// PathResponse is returned by GET /notes/path.
type PathResponse struct {
	Title string `json:"title" validate:"required"`
	Path  string `json:"path" validate:"required"`
}

// ReadyResponse is returned by GET /ready.
type ReadyResponse struct {
	Ready bool `json:"ready"`
}

// OpenResult is the response for opening a note (aliased from the domain layer).
type OpenResult = noteservice.OpenResult

// TitleMatch is a fuzzy title hit (aliased from the domain layer).
type TitleMatch = noteservice.TitleMatch

// SearchResult is a single search hit (aliased from the document store).
type SearchResult = docstore.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// TitlesResponse wraps fuzzy title matches.
type TitlesResponse struct {
	Titles []TitleMatch `json:"titles" validate:"required"`
}
