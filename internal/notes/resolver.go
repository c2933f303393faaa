// Package notes decides which files are notes and where a titled note lives.
package notes

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
)

// DefaultExtension is used when no extensions are configured.
const DefaultExtension = ".md"

// Settings is the read-only configuration the resolver consults on every call.
type Settings interface {
	NotesDirectory() string
	NoteExtensions() []string
}

// Resolver answers note-identity questions against the current Settings.
// It holds no state between calls.
type Resolver struct {
	settings Settings

	// realPath resolves symlinks; replaced in tests.
	realPath func(string) (string, error)
}

// NewResolver creates a Resolver backed by settings.
func NewResolver(settings Settings) *Resolver {
	return &Resolver{
		settings: settings,
		realPath: filepath.EvalSymlinks,
	}
}

// NotesRoot returns the configured notes directory in canonical form:
// absolute, cleaned, without a trailing separator.
func (r *Resolver) NotesRoot() string {
	return Normalize(r.settings.NotesDirectory())
}

// Extensions returns the effective extension set. It is never empty.
func (r *Resolver) Extensions() []string {
	exts := r.settings.NoteExtensions()
	if len(exts) == 0 {
		return []string{DefaultExtension}
	}
	return exts
}

// PrimaryExtension returns the extension used for newly created notes.
func (r *Resolver) PrimaryExtension() string {
	return r.Extensions()[0]
}

// NotePathForTitle returns the path of the note named title. It reports
// false when the title is blank. Separator characters in the title are
// replaced so the result is always a direct child of the notes root.
func (r *Resolver) NotePathForTitle(title string) (string, bool) {
	name := SanitizeTitle(title)
	if name == "" {
		return "", false
	}
	return filepath.Join(r.NotesRoot(), name+r.PrimaryExtension()), true
}

// IsNote reports whether path is a note: it must carry a recognised
// extension and live under the notes root, either lexically or once
// symlinks on either side are resolved. Paths that do not exist are not
// an error. Any other filesystem failure is returned as is.
func (r *Resolver) IsNote(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	normalPath := Normalize(path)

	if !slices.Contains(r.Extensions(), filepath.Ext(path)) {
		return false, nil
	}

	root := r.NotesRoot()
	if Within(normalPath, root) {
		return true, nil
	}

	realRoot, err := r.resolve(root)
	if err != nil {
		return false, err
	}
	if realRoot != "" && Within(normalPath, realRoot) {
		return true, nil
	}

	realPath, err := r.resolve(normalPath)
	if err != nil {
		return false, err
	}
	if realPath == "" {
		return false, nil
	}
	if Within(realPath, root) {
		return true, nil
	}
	return realRoot != "" && Within(realPath, realRoot), nil
}

// resolve returns the real path of p, or "" when p does not exist.
func (r *Resolver) resolve(p string) (string, error) {
	resolved, err := r.realPath(p)
	if err != nil {
		if isNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return resolved, nil
}

// SanitizeTitle trims title and replaces characters that would let it
// name anything other than a single file.
func SanitizeTitle(title string) string {
	name := strings.TrimSpace(title)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '-'
		}
		return r
	}, name)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// Normalize expands a leading ~, makes p absolute and cleans it.
func Normalize(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// Within reports whether p is root or lies beneath it. Both paths must
// already be absolute and clean.
func Within(p, root string) bool {
	if p == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(p, root)
}
