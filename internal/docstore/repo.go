package docstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/notebook/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertNote inserts or replaces a document and its full-text entry.
func (db *DB) UpsertNote(doc models.Document, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("docstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(doc.Tags)

	_, err = tx.Exec(`
		INSERT INTO notes (path, title, checksum, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, doc.Path, doc.Title, doc.Checksum, string(tagsJSON), body, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("docstore: upsert note: %w", err)
	}

	if err := ftsUpsert(tx, doc.Path, doc.Title, body, doc.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteNote removes a document and its full-text entry.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("docstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("docstore: delete note: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or "" if it is not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("docstore: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("docstore: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Documents returns every indexed note, most recently updated first.
func (db *DB) Documents() ([]models.Document, error) {
	rows, err := db.conn.Query(`SELECT path, title, checksum, tags, updated_at FROM notes ORDER BY updated_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("docstore: documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		var tags string
		if err := rows.Scan(&d.Path, &d.Title, &d.Checksum, &tags, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &d.Tags); err != nil {
			d.Tags = nil
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
