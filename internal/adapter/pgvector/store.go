package pgvector

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"mentora/backend/internal/worker"
)

// Store persists embedding chunks in the article_embeddings table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Replace swaps the stored embedding set for a document in a single
// transaction: delete every existing chunk, then insert the new set. A
// concurrent reader sees either the full old set or the full new set,
// never a mix.
func (s *Store) Replace(ctx context.Context, documentID string, chunks []worker.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM article_embeddings WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete stale embeddings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO article_embeddings (document_id, chunk_index, content, embedding) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, documentID, c.Index, c.Content, pgvector.NewVector(c.Vector)); err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.Index, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetChunks(ctx context.Context, documentID string) ([]worker.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, chunk_index, content, embedding
		 FROM article_embeddings WHERE document_id = $1 ORDER BY chunk_index`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []worker.Chunk
	for rows.Next() {
		var c worker.Chunk
		var vec pgvector.Vector
		if err := rows.Scan(&c.DocumentID, &c.Index, &c.Content, &vec); err != nil {
			return nil, err
		}
		c.Vector = vec.Slice()
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *Store) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM article_embeddings WHERE document_id = $1`, documentID).Scan(&count)
	return count, err
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article_embeddings`).Scan(&count)
	return count, err
}
