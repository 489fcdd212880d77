package storage

import (
	"context"
	"errors"
	"fmt"

	"docqa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// CreateDocument inserts a document under a fresh UUID.
func (r *DocumentRepo) CreateDocument(ctx context.Context, name, text string) (models.Document, error) {
	d := models.Document{ID: uuid.NewString(), Name: name, Text: text}
	err := r.db.Pool.QueryRow(ctx, `
INSERT INTO documents (document_id, name, content)
VALUES ($1, $2, $3)
RETURNING created_at`, d.ID, d.Name, d.Text).Scan(&d.CreatedAt)
	if err != nil {
		return models.Document{}, persistErr("create document", err)
	}
	return d, nil
}

func (r *DocumentRepo) GetDocument(ctx context.Context, documentID string) (models.Document, error) {
	if _, err := uuid.Parse(documentID); err != nil {
		return models.Document{}, ErrDocumentNotFound
	}
	var d models.Document
	err := r.db.Pool.QueryRow(ctx, `
SELECT document_id::text, name, content, created_at
FROM documents
WHERE document_id=$1`, documentID).Scan(&d.ID, &d.Name, &d.Text, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return models.Document{}, persistErr("get document", err)
	}
	return d, nil
}

func (r *DocumentRepo) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT document_id::text, name
FROM documents
ORDER BY created_at ASC, document_id ASC`)
	if err != nil {
		return nil, persistErr("list documents", err)
	}
	defer rows.Close()

	out := make([]models.DocumentSummary, 0)
	for rows.Next() {
		var d models.DocumentSummary
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, persistErr("list documents", fmt.Errorf("scan document: %w", err))
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list documents", fmt.Errorf("iterate documents: %w", err))
	}
	return out, nil
}
