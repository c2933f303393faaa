package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/checksum"
	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/notes"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root     string // absolute notes directory as configured
	realRoot string // root with every symlink resolved
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs := notes.Normalize(root)
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	return &FS{root: abs, realRoot: resolved}, nil
}

// Root returns the absolute notes directory.
func (f *FS) Root() string { return f.root }

// RealRoot returns Root with symlinks resolved. Walks and watches start here.
func (f *FS) RealRoot() string { return f.realRoot }

// safePath resolves a relative path against the notes root and rejects
// any result that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !notes.Within(abs, f.root) {
		return "", fmt.Errorf("storage: path escapes notes root: %s", rel)
	}
	return abs, nil
}

// List walks the notes directory and returns metadata for every file whose
// extension is in exts. Hidden directories are skipped.
func (f *FS) List(exts []string) ([]models.NoteMetadata, error) {
	var out []models.NoteMetadata
	err := filepath.WalkDir(f.realRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != f.realRoot && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(exts, filepath.Ext(p)) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		sum, err := checksum.File(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.realRoot, p)
		out = append(out, models.NoteMetadata{
			Path:      rel,
			Checksum:  sum,
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a note file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Rel returns abs relative to the notes root, or false when abs lies
// outside it. Paths under the real root map to the same relative path.
// A path reached through a symlinked directory keeps its file name; a
// symlink from outside both roots maps to the note it points at.
func (f *FS) Rel(abs string) (string, bool) {
	abs = notes.Normalize(abs)
	if rel, ok := f.relWithin(abs); ok {
		return rel, true
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		if rel, ok := f.relWithin(filepath.Join(dir, filepath.Base(abs))); ok {
			return rel, true
		}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", false
	}
	return f.relWithin(resolved)
}

func (f *FS) relWithin(abs string) (string, bool) {
	for _, root := range []string{f.root, f.realRoot} {
		if abs == root || !notes.Within(abs, root) {
			continue
		}
		if rel, err := filepath.Rel(root, abs); err == nil {
			return rel, true
		}
	}
	return "", false
}
