package storage

import (
	"context"
	"fmt"

	"docqa/internal/models"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ChunkRepo struct {
	db *DB
}

func NewChunkRepo(db *DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// SaveChunk appends one chunk. chunk_id comes from the table sequence, so
// concurrent writers never collide and ids follow insertion order.
func (r *ChunkRepo) SaveChunk(ctx context.Context, c models.NewChunk) (models.Chunk, error) {
	out := models.Chunk{
		DocumentID: c.DocumentID,
		Index:      c.Index,
		Text:       c.Text,
		Embedding:  c.Embedding,
	}
	err := r.db.Pool.QueryRow(ctx, `
INSERT INTO chunks (document_id, chunk_index, chunk_text, embedding)
VALUES ($1, $2, $3, $4)
RETURNING chunk_id, created_at`,
		c.DocumentID, c.Index, c.Text, pgvector.NewVector(c.Embedding),
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return models.Chunk{}, persistErr("save chunk", fmt.Errorf("document %s chunk %d: %w", c.DocumentID, c.Index, err))
	}
	return out, nil
}

// QueryNearest ranks the document's chunks by L2 distance to vec.
func (r *ChunkRepo) QueryNearest(ctx context.Context, documentID string, vec []float32, k int) ([]models.ChunkResult, error) {
	if k <= 0 {
		return []models.ChunkResult{}, nil
	}
	if _, err := uuid.Parse(documentID); err != nil {
		return []models.ChunkResult{}, nil
	}
	q := pgvector.NewVector(vec)
	rows, err := r.db.Pool.Query(ctx, `
SELECT chunk_id, document_id::text, chunk_index, chunk_text, embedding, created_at,
       embedding <-> $2 AS distance
FROM chunks
WHERE document_id=$1
ORDER BY embedding <-> $2, chunk_id
LIMIT $3`, documentID, q, k)
	if err != nil {
		return nil, persistErr("query nearest", err)
	}
	defer rows.Close()

	out := make([]models.ChunkResult, 0, k)
	for rows.Next() {
		var (
			res models.ChunkResult
			emb pgvector.Vector
		)
		if err := rows.Scan(&res.ID, &res.DocumentID, &res.Index, &res.Text, &emb, &res.CreatedAt, &res.Distance); err != nil {
			return nil, persistErr("query nearest", fmt.Errorf("scan chunk result: %w", err))
		}
		res.Embedding = emb.Slice()
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("query nearest", fmt.Errorf("iterate search rows: %w", err))
	}
	return out, nil
}

func (r *ChunkRepo) ListChunks(ctx context.Context, documentID string) ([]models.Chunk, error) {
	if _, err := uuid.Parse(documentID); err != nil {
		return []models.Chunk{}, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT chunk_id, document_id::text, chunk_index, chunk_text, created_at
FROM chunks
WHERE document_id=$1
ORDER BY chunk_index ASC, chunk_id ASC`, documentID)
	if err != nil {
		return nil, persistErr("list chunks", err)
	}
	defer rows.Close()
	out := make([]models.Chunk, 0, 64)
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Text, &c.CreatedAt); err != nil {
			return nil, persistErr("list chunks", fmt.Errorf("scan chunk: %w", err))
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list chunks", fmt.Errorf("iterate chunks: %w", err))
	}
	return out, nil
}
