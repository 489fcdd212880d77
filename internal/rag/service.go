package rag

import (
	"context"
	"fmt"
	"log/slog"

	"docqa/internal/models"
)

// Service is the facade the HTTP layer talks to.
type Service struct {
	docs       DocumentStore
	chunks     ChunkStore
	orch       *Orchestrator
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewService(docs DocumentStore, chunks ChunkStore, orch *Orchestrator, dispatcher Dispatcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, chunks: chunks, orch: orch, dispatcher: dispatcher, logger: logger}
}

func (s *Service) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	docs, err := s.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// CreateDocument stores the document and hands ingestion to the dispatcher.
// It returns as soon as the row exists; chunks appear later. A rejected
// submission is logged and leaves the document without chunks.
func (s *Service) CreateDocument(ctx context.Context, name, text string) (models.Document, error) {
	doc, err := s.docs.CreateDocument(ctx, name, text)
	if err != nil {
		return models.Document{}, fmt.Errorf("create document: %w", err)
	}
	if err := s.dispatcher.Submit(ctx, IngestJob{DocumentID: doc.ID, Text: text}); err != nil {
		s.logger.Error("submit ingestion failed", "document_id", doc.ID, "name", name, "error", err)
	} else {
		s.logger.Info("ingestion submitted", "document_id", doc.ID, "name", name)
	}
	return doc, nil
}

func (s *Service) AnswerQuestion(ctx context.Context, documentID, question string) (string, error) {
	return s.orch.Answer(ctx, documentID, question)
}

func (s *Service) FindSimilarChunks(ctx context.Context, documentID, question string) ([]models.ChunkResult, error) {
	return s.orch.Retrieve(ctx, documentID, question)
}

// ListChunks returns a document's chunks in text order.
func (s *Service) ListChunks(ctx context.Context, documentID string) ([]models.Chunk, error) {
	if _, err := s.docs.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	chunks, err := s.chunks.ListChunks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	return chunks, nil
}
