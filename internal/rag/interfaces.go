package rag

import (
	"context"

	"docqa/internal/models"
)

type DocumentStore interface {
	CreateDocument(ctx context.Context, name, text string) (models.Document, error)
	GetDocument(ctx context.Context, documentID string) (models.Document, error)
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)
}

type ChunkStore interface {
	SaveChunk(ctx context.Context, c models.NewChunk) (models.Chunk, error)
	QueryNearest(ctx context.Context, documentID string, vec []float32, k int) ([]models.ChunkResult, error)
	ListChunks(ctx context.Context, documentID string) ([]models.Chunk, error)
}

type CallRecorder interface {
	RecordCall(ctx context.Context, rec models.LLMCall) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Retriever interface {
	Search(ctx context.Context, documentID string, queryVec []float32) ([]models.ChunkResult, error)
}

// IngestJob asks a background worker to chunk and embed one document.
type IngestJob struct {
	DocumentID string
	Text       string
}

// Dispatcher schedules ingestion without waiting for it.
type Dispatcher interface {
	Submit(ctx context.Context, job IngestJob) error
}
