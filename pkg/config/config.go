// Package config provides YAML-based configuration loading with environment
// variable expansion and hot reload.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// LoadIfExists loads filename into target when the file exists. A missing
// file leaves target untouched, validates it, and reports false.
func LoadIfExists[T any](filename string, target *T) (bool, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if validator, ok := any(target).(Validator); ok {
			if err := validator.Validate(); err != nil {
				return false, fmt.Errorf("config validation failed: %w", err)
			}
		}
		return false, nil
	}
	return true, Load(filename, target)
}

// reloadDelay collapses the burst of events an editor produces on save.
const reloadDelay = 100 * time.Millisecond

// Watch reloads filename whenever it changes until ctx is cancelled. Each
// reload decodes into a fresh value from newTarget; valid results are handed
// to apply, failures to onError and the previous value stays in effect.
//
// The parent directory is watched rather than the file so that editors that
// save by rename keep triggering reloads.
func Watch[T any](ctx context.Context, filename string, newTarget func() *T, apply func(*T), onError func(error)) error {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return fmt.Errorf("config: resolve %s: %w", filename, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(abs), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
				fire = timer.C
			} else {
				timer.Reset(reloadDelay)
			}

		case <-fire:
			target := newTarget()
			if err := Load(abs, target); err != nil {
				onError(err)
				continue
			}
			apply(target)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			onError(fmt.Errorf("config: watcher: %w", watchErr))
		}
	}
}
