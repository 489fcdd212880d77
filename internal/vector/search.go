package vector

import (
	"context"
	"fmt"

	"docqa/internal/models"
)

const DefaultTopK = 10

// NearestQuerier is implemented by chunk stores that can rank one document's
// chunks by L2 distance.
type NearestQuerier interface {
	QueryNearest(ctx context.Context, documentID string, vec []float32, k int) ([]models.ChunkResult, error)
}

type Searcher struct {
	q    NearestQuerier
	dim  int
	topK int
}

func NewSearcher(q NearestQuerier, dim, topK int) *Searcher {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Searcher{q: q, dim: dim, topK: topK}
}

func (s *Searcher) TopK() int { return s.topK }

// Search returns the document's chunks nearest to queryVec, at most TopK of
// them, ordered by ascending distance. A document without chunks yields an
// empty slice.
func (s *Searcher) Search(ctx context.Context, documentID string, queryVec []float32) ([]models.ChunkResult, error) {
	if s.dim > 0 && len(queryVec) != s.dim {
		return nil, fmt.Errorf("query vector has dimension %d, want %d", len(queryVec), s.dim)
	}
	results, err := s.q.QueryNearest(ctx, documentID, queryVec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if results == nil {
		results = []models.ChunkResult{}
	}
	return results, nil
}
