package workflows

const (
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusPartial    = "partial"
	StatusFailed     = "failed"
)

type IngestDocumentInput struct {
	DocumentID    string `json:"document_id"`
	MaxConcurrent int    `json:"max_concurrent"`
}

// IngestDocumentResult doubles as the progress answer of QueryGetIngestProgress.
type IngestDocumentResult struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Saved      int    `json:"saved"`
	Error      string `json:"error,omitempty"`
}
