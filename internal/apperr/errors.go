// Package apperr holds sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidTitle   = errors.New("invalid note title")
	ErrNotANote       = errors.New("not a note")
	ErrInsidePackages = errors.New("notes directory is inside the packages directory")
	ErrNotReady       = errors.New("document store not ready")
)
