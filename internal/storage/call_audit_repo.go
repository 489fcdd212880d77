package storage

import (
	"context"

	"docqa/internal/models"

	"github.com/google/uuid"
)

// CallAuditRepo keeps one row per completion attempt.
type CallAuditRepo struct {
	db *DB
}

func NewCallAuditRepo(db *DB) *CallAuditRepo {
	return &CallAuditRepo{db: db}
}

func (r *CallAuditRepo) RecordCall(ctx context.Context, rec models.LLMCall) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	var docID any
	if _, err := uuid.Parse(rec.DocumentID); err == nil {
		docID = rec.DocumentID
	}
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO llm_calls (call_id, operation, document_id, provider, model, status, error_type)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''))`,
		rec.ID, rec.Operation, docID, rec.Provider, rec.Model, rec.Status, rec.ErrorType)
	if err != nil {
		return persistErr("record llm call", err)
	}
	return nil
}
