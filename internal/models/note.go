// Package models defines the domain types shared across notebook packages.
package models

import "time"

// NoteMetadata is a lightweight representation of a note file on disk.
type NoteMetadata struct {
	Path      string    `json:"path"` // relative to the notes root
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document is a note as seen by the document store.
type Document struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
