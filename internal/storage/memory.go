package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"docqa/internal/models"
	"docqa/internal/vector"

	"github.com/google/uuid"
)

// MemoryStore keeps documents, chunks and call records in process. It backs
// local runs and tests with the same query semantics as the Postgres repos.
type MemoryStore struct {
	mu     sync.RWMutex
	seq    int64
	docs   map[string]models.Document
	order  []string
	chunks map[string][]models.Chunk
	calls  []models.LLMCall
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:   make(map[string]models.Document),
		chunks: make(map[string][]models.Chunk),
	}
}

func (s *MemoryStore) CreateDocument(_ context.Context, name, text string) (models.Document, error) {
	d := models.Document{ID: uuid.NewString(), Name: name, Text: text, CreatedAt: time.Now().UTC()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = d
	s.order = append(s.order, d.ID)
	return d, nil
}

func (s *MemoryStore) GetDocument(_ context.Context, documentID string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[documentID]
	if !ok {
		return models.Document{}, ErrDocumentNotFound
	}
	return d, nil
}

func (s *MemoryStore) ListDocuments(_ context.Context) ([]models.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DocumentSummary, 0, len(s.order))
	for _, id := range s.order {
		d := s.docs[id]
		out = append(out, models.DocumentSummary{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

func (s *MemoryStore) SaveChunk(_ context.Context, c models.NewChunk) (models.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[c.DocumentID]; !ok {
		return models.Chunk{}, persistErr("save chunk", fmt.Errorf("document %s: %w", c.DocumentID, ErrDocumentNotFound))
	}
	s.seq++
	out := models.Chunk{
		ID:         s.seq,
		DocumentID: c.DocumentID,
		Index:      c.Index,
		Text:       c.Text,
		Embedding:  append([]float32(nil), c.Embedding...),
		CreatedAt:  time.Now().UTC(),
	}
	s.chunks[c.DocumentID] = append(s.chunks[c.DocumentID], out)
	return out, nil
}

func (s *MemoryStore) QueryNearest(_ context.Context, documentID string, vec []float32, k int) ([]models.ChunkResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owned := s.chunks[documentID]
	cands := make([]vector.Candidate, len(owned))
	for i, c := range owned {
		cands[i] = vector.Candidate{Seq: c.ID, Vector: c.Embedding}
	}
	nearest := vector.Nearest(vec, cands, k)
	out := make([]models.ChunkResult, 0, len(nearest))
	for _, n := range nearest {
		out = append(out, models.ChunkResult{Chunk: owned[n.Index], Distance: n.Distance})
	}
	return out, nil
}

func (s *MemoryStore) ListChunks(_ context.Context, documentID string) ([]models.Chunk, error) {
	s.mu.RLock()
	out := append([]models.Chunk(nil), s.chunks[documentID]...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) RecordCall(_ context.Context, rec models.LLMCall) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.calls = append(s.calls, rec)
	s.mu.Unlock()
	return nil
}

// Calls returns a copy of the recorded completion attempts.
func (s *MemoryStore) Calls() []models.LLMCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.LLMCall(nil), s.calls...)
}
