package rag

import "fmt"

const (
	StageEmbed    = "embed"
	StageSearch   = "search"
	StageComplete = "complete"
)

// AnswerError wraps the failure of one answering stage. Err keeps the typed
// cause from the embedding, storage or completion layer.
type AnswerError struct {
	DocumentID string
	Stage      string
	Err        error
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("answer document %s: %s: %v", e.DocumentID, e.Stage, e.Err)
}

func (e *AnswerError) Unwrap() error { return e.Err }
