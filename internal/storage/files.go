package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/notes"
)

// WriteFileAtomic writes content to path: tmp file, fsync, rename.
// Missing parent directories are created. When path is a symlink the file
// it points to is replaced and the link is kept. An existing file keeps its
// permission bits.
func WriteFileAtomic(path string, content []byte) error {
	target, mode, err := writeTarget(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".notebook-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// writeTarget returns the file a write to path must replace and the mode
// it must end up with. A path that does not exist yet is written as is.
func writeTarget(path string) (string, fs.FileMode, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, 0o644, nil
		}
		return "", 0, fmt.Errorf("storage: resolve %s: %w", path, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", 0, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return resolved, info.Mode().Perm(), nil
}

// CreateEmpty creates an empty file at path unless one already exists.
// It reports whether the file was created.
func CreateEmpty(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: create %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return true, fmt.Errorf("storage: close %s: %w", path, err)
	}
	return true, nil
}

// EnsureNotesDirectory makes sure dir can hold notes. A notes directory
// inside packagesDir is refused. A missing directory is created and, when
// seedDir is set, populated with a copy of it.
func EnsureNotesDirectory(dir, packagesDir, seedDir string) error {
	dir = notes.Normalize(dir)
	if packagesDir != "" && notes.Within(dir, notes.Normalize(packagesDir)) {
		return fmt.Errorf("storage: %s: %w", dir, apperr.ErrInsidePackages)
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("storage: notes path is not a directory: %s", dir)
		}
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("storage: stat notes dir: %w", err)
	}

	if seedDir == "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage: create notes dir: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("storage: create notes parent: %w", err)
	}
	if err := os.CopyFS(dir, os.DirFS(notes.Normalize(seedDir))); err != nil {
		return fmt.Errorf("storage: seed notes dir: %w", err)
	}
	return nil
}
