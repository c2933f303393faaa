package docstore

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/notebook/internal/checksum"
	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/notes"
	"github.com/starford/notebook/internal/parser"
	"github.com/starford/notebook/internal/storage"
)

// Sync walks the notes directory and brings the store up to date:
//   - new/changed notes are parsed and upserted
//   - notes removed from disk are deleted from the store
//
// The first successful Sync marks the store ready.
func Sync(db *DB, store storage.Provider, resolver *notes.Resolver, logger *slog.Logger) error {
	metas, err := store.List(resolver.Extensions())
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	if !db.ready.Swap(true) {
		logger.Info("docstore: ready", slog.Int("notes", len(metas)))
	}
	return nil
}

// IndexFile parses data and upserts it under path. Notes without a
// frontmatter title or heading are titled by their file name.
func IndexFile(db Store, path string, data []byte, updatedAt time.Time) error {
	res := parser.Parse(data)
	title := res.Title
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return db.UpsertNote(models.Document{
		Path:      path,
		Title:     title,
		Tags:      tags,
		Checksum:  checksum.Sum(data),
		UpdatedAt: updatedAt,
	}, res.Body)
}
