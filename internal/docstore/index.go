package docstore

import "github.com/starford/notebook/internal/models"

// Store defines the document-store operations the rest of the app uses.
// Consumers should depend on this interface rather than *DB.
type Store interface {
	UpsertNote(doc models.Document, body string) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Documents() ([]models.Document, error)
	Search(query string, limit int) ([]SearchResult, error)
	Ready() bool
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
