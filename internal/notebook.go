package internal

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/notebook/internal/docstore"
	"github.com/starford/notebook/internal/lifecycle"
	"github.com/starford/notebook/internal/notes"
	"github.com/starford/notebook/internal/noteservice"
	"github.com/starford/notebook/internal/storage"
)

// Notebook bundles the components built on one notes directory.
type Notebook struct {
	Live     *LiveConfig
	Resolver *notes.Resolver
	Store    *storage.FS
	DB       *docstore.DB
	Service  *noteservice.Service
}

// NewLogger returns the JSON logger used across the application.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenNotebook prepares the notes directory and opens the document store.
// The store is empty until Sync runs.
func OpenNotebook(cfg *Config, logger *slog.Logger) (*Notebook, error) {
	live := NewLiveConfig(cfg)
	resolver := notes.NewResolver(live)

	root := resolver.NotesRoot()
	if err := storage.EnsureNotesDirectory(root, cfg.Notes.PackagesDirectory, cfg.Notes.SeedDirectory); err != nil {
		return nil, fmt.Errorf("prepare notes directory: %w", err)
	}

	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := docstore.Open(cfg.SQLite.Path, cfg.Notes.UseStemming)
	if err != nil {
		return nil, fmt.Errorf("init docstore: %w", err)
	}

	keeper := lifecycle.NewKeeper(resolver, live, lifecycle.LogNotifier{Logger: logger}, logger)

	return &Notebook{
		Live:     live,
		Resolver: resolver,
		Store:    store,
		DB:       db,
		Service:  noteservice.NewService(resolver, store, db, keeper, logger),
	}, nil
}

// Sync brings the document store up to date with the notes directory and
// returns the number of indexed notes.
func (n *Notebook) Sync(logger *slog.Logger) (int, error) {
	if err := docstore.Sync(n.DB, n.Store, n.Resolver, logger); err != nil {
		return 0, err
	}
	docs, err := n.DB.Documents()
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Close releases the document store.
func (n *Notebook) Close() error {
	return n.DB.Close()
}
