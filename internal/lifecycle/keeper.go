// Package lifecycle reacts to editor lifecycle triggers on note buffers:
// modified notes are saved and empty notes are deleted.
package lifecycle

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Buffer is the host editor's view of an open file.
type Buffer interface {
	URI() string
	IsModified() bool
	IsEmpty() bool
	Save() error
}

// Notifier shows messages to the user.
type Notifier interface {
	Info(msg string)
	Error(msg, detail string)
}

// Classifier decides whether a path is a note.
type Classifier interface {
	IsNote(path string) (bool, error)
}

// Settings exposes the autosave switch.
type Settings interface {
	AutosaveEnabled() bool
}

// Keeper applies autosave and autodelete to buffers.
type Keeper struct {
	notes    Classifier
	settings Settings
	notifier Notifier
	logger   *slog.Logger
	remove   func(string) error
}

// NewKeeper creates a Keeper.
func NewKeeper(notes Classifier, settings Settings, notifier Notifier, logger *slog.Logger) *Keeper {
	return &Keeper{
		notes:    notes,
		settings: settings,
		notifier: notifier,
		logger:   logger,
		remove:   os.Remove,
	}
}

// WithNotifier returns a copy of k that reports to n.
func (k *Keeper) WithNotifier(n Notifier) *Keeper {
	c := *k
	c.notifier = n
	return &c
}

// isNote treats classification errors as "not a note"; the triggers have
// nowhere to report them except the log.
func (k *Keeper) isNote(uri string) bool {
	ok, err := k.notes.IsNote(uri)
	if err != nil {
		k.logger.Warn("lifecycle: classify failed", slog.String("path", uri), slog.String("error", err.Error()))
		return false
	}
	return ok
}

// Autosave saves buf when autosave is on and buf is a modified note.
// It reports whether a save was attempted.
func (k *Keeper) Autosave(buf Buffer) (bool, error) {
	if !k.settings.AutosaveEnabled() || buf == nil {
		return false, nil
	}
	uri := buf.URI()
	if uri == "" || !buf.IsModified() || !k.isNote(uri) {
		return false, nil
	}
	if err := buf.Save(); err != nil {
		k.logger.Error("lifecycle: autosave failed", slog.String("path", uri), slog.String("error", err.Error()))
		return true, fmt.Errorf("lifecycle: save %s: %w", uri, err)
	}
	k.logger.Debug("lifecycle: autosaved", slog.String("path", uri))
	return true, nil
}

// Autodelete deletes the file behind buf when buf is an empty note. It
// reports whether the note is gone; a file that was already missing counts.
func (k *Keeper) Autodelete(buf Buffer) bool {
	if buf == nil {
		return false
	}
	uri := buf.URI()
	if uri == "" || !k.isNote(uri) || !buf.IsEmpty() {
		return false
	}

	title := filepath.Base(uri)
	k.notifier.Info(fmt.Sprintf("Deleting empty note %q...", title))
	if err := k.remove(uri); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true
		}
		k.notifier.Error(fmt.Sprintf("Failed to delete empty note %q", title), err.Error())
		return false
	}
	k.logger.Info("lifecycle: deleted empty note", slog.String("path", uri))
	return true
}

// AutosaveAll saves every modified note among bufs. Used when the window
// unloads or loses focus. Failures are joined.
func (k *Keeper) AutosaveAll(bufs []Buffer) error {
	if !k.settings.AutosaveEnabled() {
		return nil
	}
	var errs []error
	for _, b := range bufs {
		if _, err := k.Autosave(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WillDestroy runs when the host is about to close buf: an empty note is
// deleted, anything else is autosaved.
func (k *Keeper) WillDestroy(buf Buffer) error {
	if k.Autodelete(buf) {
		return nil
	}
	_, err := k.Autosave(buf)
	return err
}

// Blur runs when a single editor loses focus.
func (k *Keeper) Blur(buf Buffer) error {
	_, err := k.Autosave(buf)
	return err
}
