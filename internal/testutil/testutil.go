// Package testutil provides shared test helpers for setting up notebooks and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/notebook/internal/docstore"
	"github.com/starford/notebook/internal/notes"
	"github.com/starford/notebook/internal/storage"
)

// TestDB creates a temporary SQLite document store that is automatically closed.
func TestDB(t *testing.T) *docstore.DB {
	t.Helper()
	db, err := docstore.Open(filepath.Join(t.TempDir(), "notebook-test.db"), true)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Notebook bundles a temporary notes directory with the pieces built on it.
type Notebook struct {
	Dir      string
	Settings *notes.StaticSettings
	Resolver *notes.Resolver
	Store    storage.Provider
}

// TestNotebook creates a temporary notes directory. With no exts the
// resolver falls back to its default extension.
func TestNotebook(t *testing.T, exts ...string) *Notebook {
	t.Helper()
	return NotebookAt(t, t.TempDir(), exts...)
}

// NotebookAt builds a notebook on an existing directory, which may be a
// symlink.
func NotebookAt(t *testing.T, dir string, exts ...string) *Notebook {
	t.Helper()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	settings := &notes.StaticSettings{Directory: dir, Extensions: exts}
	return &Notebook{
		Dir:      store.Root(),
		Settings: settings,
		Resolver: notes.NewResolver(settings),
		Store:    store,
	}
}

// WriteNote writes content to rel under the notebook directory.
func (nb *Notebook) WriteNote(t *testing.T, rel, content string) {
	t.Helper()
	if err := storage.WriteFileAtomic(filepath.Join(nb.Dir, rel), []byte(content)); err != nil {
		t.Fatal(err)
	}
}

// SymlinkFixture builds a real notes directory D, a symlink R pointing at
// it, a note D/note.md and a link R/note-link.md to that note.
func SymlinkFixture(t *testing.T, content string) (realDir, linkDir string) {
	t.Helper()
	base := t.TempDir()
	realDir = filepath.Join(base, "notebook")
	linkDir = filepath.Join(base, "note book")
	if err := os.Mkdir(realDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(realDir, linkDir); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	note := filepath.Join(realDir, "note.md")
	if err := os.WriteFile(note, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(note, filepath.Join(linkDir, "note-link.md")); err != nil {
		t.Fatal(err)
	}
	return realDir, linkDir
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
