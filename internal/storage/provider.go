// Package storage owns the notes directory on disk.
package storage

import "github.com/starford/notebook/internal/models"

// Provider is the interface for note file operations. Paths are relative
// to the notes root.
type Provider interface {
	// Root returns the absolute notes directory.
	Root() string
	// List returns metadata for every file whose extension is in exts.
	List(exts []string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// RealRoot returns Root with symlinks resolved.
	RealRoot() string
	// Rel maps an absolute path to a root-relative one.
	Rel(abs string) (string, bool)
}

var _ Provider = (*FS)(nil)
