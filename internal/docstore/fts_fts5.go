//go:build sqlite_fts5

package docstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const (
	tokenizerStemmed = "porter unicode61 remove_diacritics 2"
	tokenizerPlain   = "unicode61 remove_diacritics 2"
)

// initFTS creates the full-text table. Changing the tokenizer drops the
// table and clears checksums so the next sync reindexes every note.
func initFTS(conn *sql.DB, stemming bool) error {
	tokenizer := tokenizerPlain
	if stemming {
		tokenizer = tokenizerStemmed
	}

	var current string
	err := conn.QueryRow(`SELECT value FROM meta WHERE key = 'tokenizer'`).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if current != tokenizer {
		if _, err := conn.Exec(`DROP TABLE IF EXISTS files_fts`); err != nil {
			return err
		}
		if _, err := conn.Exec(`UPDATE notes SET checksum = ''`); err != nil {
			return err
		}
		if _, err := conn.Exec(`INSERT INTO meta (key, value) VALUES ('tokenizer', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, tokenizer); err != nil {
			return err
		}
	}

	_, err = conn.Exec(fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
			path UNINDEXED,
			title,
			body,
			tags,
			tokenize = '%s'
		);
	`, tokenizer))
	return err
}

func ftsUpsert(tx *sql.Tx, path, title, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM files_fts WHERE path = ?`, path)
	_, err := tx.Exec(`INSERT INTO files_fts (path, title, body, tags) VALUES (?, ?, ?, ?)`,
		path, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("docstore: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM files_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search and returns ranked hits with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       title,
		       snippet(files_fts, 2, '<b>', '</b>', '...', 64)
		FROM files_fts
		WHERE files_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("docstore: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
