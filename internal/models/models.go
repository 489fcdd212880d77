package models

import "time"

type Document struct {
	ID        string    `json:"document_id"`
	Name      string    `json:"name"`
	Text      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type DocumentSummary struct {
	ID   string `json:"document_id"`
	Name string `json:"name"`
}

type Chunk struct {
	ID         int64     `json:"chunk_id"`
	DocumentID string    `json:"document_id"`
	Index      int       `json:"chunk_index"`
	Text       string    `json:"chunk_text"`
	Embedding  []float32 `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewChunk is a chunk before the store assigns its ID.
type NewChunk struct {
	DocumentID string
	Index      int
	Text       string
	Embedding  []float32
}

type ChunkResult struct {
	Chunk
	Distance float64 `json:"distance"`
}

type LLMCall struct {
	ID         string    `json:"call_id"`
	Operation  string    `json:"operation"`
	DocumentID string    `json:"document_id"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Status     string    `json:"status"`
	ErrorType  string    `json:"error_type,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
