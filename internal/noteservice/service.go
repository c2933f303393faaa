// Package noteservice ties the resolver, the notes directory, the document
// store and the buffer keeper together behind the operations the host calls.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/checksum"
	"github.com/starford/notebook/internal/docstore"
	"github.com/starford/notebook/internal/lifecycle"
	"github.com/starford/notebook/internal/notes"
	"github.com/starford/notebook/internal/parser"
	"github.com/starford/notebook/internal/storage"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// OpenResult describes a note opened by title.
type OpenResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Created bool   `json:"created"`
}

// TitleMatch is one hit of the fuzzy title finder.
type TitleMatch struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Score   int    `json:"score"`
	Matched []int  `json:"matched,omitempty"`
}

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Checksum    string         `json:"checksum"`
	Tags        []string       `json:"tags"`
	Links       []string       `json:"links"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
}

// Service coordinates the resolver, storage and document store.
type Service struct {
	resolver *notes.Resolver
	store    storage.Provider
	db       docstore.Store
	keeper   *lifecycle.Keeper
	logger   *slog.Logger
}

// NewService creates a new note service.
func NewService(resolver *notes.Resolver, store storage.Provider, db docstore.Store, keeper *lifecycle.Keeper, logger *slog.Logger) *Service {
	return &Service{resolver: resolver, store: store, db: db, keeper: keeper, logger: logger}
}

// NotesRoot returns the canonical notes directory.
func (s *Service) NotesRoot() string { return s.resolver.NotesRoot() }

// PrimaryExtension returns the extension given to new notes.
func (s *Service) PrimaryExtension() string { return s.resolver.PrimaryExtension() }

// Extensions returns the effective note extensions.
func (s *Service) Extensions() []string { return s.resolver.Extensions() }

// IsNote reports whether path is a note.
func (s *Service) IsNote(path string) (bool, error) { return s.resolver.IsNote(path) }

// NotePathForTitle returns where the note called title lives.
func (s *Service) NotePathForTitle(title string) (string, error) {
	p, ok := s.resolver.NotePathForTitle(title)
	if !ok {
		return "", apperr.ErrInvalidTitle
	}
	return p, nil
}

// Ready reports whether the document store finished its initial sync.
func (s *Service) Ready() bool { return s.db.Ready() }

// OpenNote returns the note called title, creating an empty file for it
// first if none exists.
func (s *Service) OpenNote(_ context.Context, title string) (*OpenResult, error) {
	p, err := s.NotePathForTitle(title)
	if err != nil {
		return nil, err
	}
	created, err := storage.CreateEmpty(p)
	if err != nil {
		return nil, fmt.Errorf("noteservice: open %q: %w", title, err)
	}
	if created {
		s.logger.Info("noteservice: created note", slog.String("path", p))
		// The watcher catches up eventually; index now so the title is
		// findable immediately.
		if rel, ok := s.store.Rel(p); ok {
			if err := docstore.IndexFile(s.db, rel, nil, time.Now()); err != nil {
				s.logger.Warn("noteservice: index failed", slog.String("path", rel), slog.String("error", err.Error()))
			}
		}
	}
	return &OpenResult{Path: p, Title: notes.SanitizeTitle(title), Created: created}, nil
}

// OpenInterlink opens the note named by the [[link]] at col in line.
func (s *Service) OpenInterlink(ctx context.Context, line string, col int) (*OpenResult, error) {
	target, ok := parser.LinkAt(line, col)
	if !ok {
		return nil, fmt.Errorf("noteservice: no interlink at column %d: %w", col, apperr.ErrNotFound)
	}
	return s.OpenNote(ctx, target)
}

// Search runs a full-text query against the document store.
func (s *Service) Search(_ context.Context, query string, limit int) ([]docstore.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []docstore.SearchResult{}, nil
	}
	if !s.db.Ready() {
		return nil, apperr.ErrNotReady
	}
	res, err := s.db.Search(query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []docstore.SearchResult{}
	}
	return res, nil
}

type titleSource []TitleMatch

func (t titleSource) String(i int) string { return t[i].Title }
func (t titleSource) Len() int            { return len(t) }

// FindTitles fuzzy-matches pattern against indexed note titles, best
// match first. An empty pattern lists the most recently updated notes.
func (s *Service) FindTitles(_ context.Context, pattern string, limit int) ([]TitleMatch, error) {
	docs, err := s.db.Documents()
	if err != nil {
		return nil, err
	}
	src := make(titleSource, len(docs))
	for i, d := range docs {
		src[i] = TitleMatch{Path: d.Path, Title: d.Title}
	}

	limit = clampLimit(limit)
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return src[:min(limit, len(src))], nil
	}

	matches := fuzzy.FindFrom(pattern, src)
	out := make([]TitleMatch, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		hit := src[m.Index]
		hit.Score = m.Score
		hit.Matched = m.MatchedIndexes
		out = append(out, hit)
	}
	return out, nil
}

// ReadNote reads a note by absolute path or by path relative to the notes
// root.
func (s *Service) ReadNote(_ context.Context, path string) (*NoteDetail, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.store.Root(), path)
	}
	ok, err := s.resolver.IsNote(abs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("noteservice: %s: %w", path, apperr.ErrNotANote)
	}
	rel, inStore := s.store.Rel(abs)
	if !inStore {
		return nil, fmt.Errorf("noteservice: %s: %w", path, apperr.ErrNotFound)
	}
	data, err := s.store.Read(rel)
	if err != nil {
		return nil, err
	}
	res := parser.Parse(data)
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	}
	return &NoteDetail{
		Path:        rel,
		Title:       title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Links:       nonNilSlice(res.Links),
		Frontmatter: res.Frontmatter,
	}, nil
}

// SaveBuffers autosaves every modified note among bufs.
func (s *Service) SaveBuffers(bufs []lifecycle.Buffer, n lifecycle.Notifier) error {
	return s.keeperFor(n).AutosaveAll(bufs)
}

// DeleteBuffer deletes buf's file when it is an empty note.
func (s *Service) DeleteBuffer(buf lifecycle.Buffer, n lifecycle.Notifier) bool {
	return s.keeperFor(n).Autodelete(buf)
}

// BlurBuffer autosaves buf after its editor lost focus.
func (s *Service) BlurBuffer(buf lifecycle.Buffer, n lifecycle.Notifier) error {
	return s.keeperFor(n).Blur(buf)
}

// DestroyBuffer runs the close trigger for buf.
func (s *Service) DestroyBuffer(buf lifecycle.Buffer, n lifecycle.Notifier) error {
	return s.keeperFor(n).WillDestroy(buf)
}

func (s *Service) keeperFor(n lifecycle.Notifier) *lifecycle.Keeper {
	if n == nil {
		return s.keeper
	}
	return s.keeper.WithNotifier(n)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
