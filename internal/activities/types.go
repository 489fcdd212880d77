package activities

type ChunkDocumentInput struct {
	DocumentID string `json:"document_id"`
}

type ChunkDocumentOutput struct {
	Chunks []string `json:"chunks"`
}

type EmbedAndSaveChunkInput struct {
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

type EmbedAndSaveChunkOutput struct {
	ChunkID int64 `json:"chunk_id"`
}
