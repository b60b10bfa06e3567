package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

const createEmbeddingsTable = `
	CREATE TABLE IF NOT EXISTS card_embeddings (
		slug       TEXT PRIMARY KEY,
		embedding  TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

// SQLiteStore keeps one row per slug with the vector stored as JSON text.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache '%s': %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createEmbeddingsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create card_embeddings table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (map[string][]float32, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, embedding FROM card_embeddings`)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	vectors := make(map[string][]float32)
	for rows.Next() {
		var slug, raw string
		if err := rows.Scan(&slug, &raw); err != nil {
			return nil, false, fmt.Errorf("failed to scan embedding row: %w", err)
		}
		var vec []float32
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			return nil, false, fmt.Errorf("failed to decode embedding for %s: %w", slug, err)
		}
		vectors[slug] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read embeddings: %w", err)
	}

	return vectors, len(vectors) > 0, nil
}

// Save upserts every entry in one transaction. Rows for slugs absent from
// vectors are left alone, matching the file store's keep-stale behaviour.
func (s *SQLiteStore) Save(ctx context.Context, vectors map[string][]float32) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO card_embeddings (slug, embedding, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slug) DO UPDATE SET
			embedding = excluded.embedding,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for slug, vec := range vectors {
		raw, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("failed to encode embedding for %s: %w", slug, err)
		}
		if _, err := stmt.ExecContext(ctx, slug, string(raw)); err != nil {
			return fmt.Errorf("failed to upsert embedding for %s: %w", slug, err)
		}
	}

	return tx.Commit()
}
