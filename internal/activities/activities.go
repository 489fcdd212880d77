package activities

import (
	"context"
	"errors"
	"fmt"

	"docqa/internal/models"
	"docqa/internal/storage"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

type DocumentReader interface {
	GetDocument(ctx context.Context, documentID string) (models.Document, error)
}

// ChunkWriter is the slice of rag.Pipeline the activities drive.
type ChunkWriter interface {
	Chunk(text string) []string
	EmbedAndSave(ctx context.Context, documentID string, index int, text string) (models.Chunk, error)
}

type Activities struct {
	docs     DocumentReader
	pipeline ChunkWriter
}

func New(docs DocumentReader, pipeline ChunkWriter) *Activities {
	return &Activities{docs: docs, pipeline: pipeline}
}

func (a *Activities) ChunkDocumentActivity(ctx context.Context, in ChunkDocumentInput) (ChunkDocumentOutput, error) {
	doc, err := a.docs.GetDocument(ctx, in.DocumentID)
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return ChunkDocumentOutput{}, temporal.NewNonRetryableApplicationError("document not found", "DocumentNotFound", err)
	}
	if err != nil {
		return ChunkDocumentOutput{}, fmt.Errorf("load document: %w", err)
	}
	chunks := a.pipeline.Chunk(doc.Text)
	activity.GetLogger(ctx).Info("document chunked", "document_id", in.DocumentID, "chunks", len(chunks))
	return ChunkDocumentOutput{Chunks: chunks}, nil
}

func (a *Activities) EmbedAndSaveChunkActivity(ctx context.Context, in EmbedAndSaveChunkInput) (EmbedAndSaveChunkOutput, error) {
	c, err := a.pipeline.EmbedAndSave(ctx, in.DocumentID, in.ChunkIndex, in.Text)
	if err != nil {
		return EmbedAndSaveChunkOutput{}, err
	}
	return EmbedAndSaveChunkOutput{ChunkID: c.ID}, nil
}
