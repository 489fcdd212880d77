package storage

import (
	"context"
	"fmt"
)

func schemaStatements(dim int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
  document_id UUID PRIMARY KEY,
  name        TEXT NOT NULL,
  content     TEXT NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
  chunk_id    BIGSERIAL PRIMARY KEY,
  document_id UUID NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
  chunk_index INT NOT NULL,
  chunk_text  TEXT NOT NULL,
  embedding   vector(%d) NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, dim),
		`CREATE INDEX IF NOT EXISTS chunks_document_id_idx ON chunks (document_id, chunk_id)`,
		`CREATE TABLE IF NOT EXISTS llm_calls (
  call_id     UUID PRIMARY KEY,
  operation   TEXT NOT NULL,
  document_id UUID,
  provider    TEXT NOT NULL,
  model       TEXT NOT NULL,
  status      TEXT NOT NULL,
  error_type  TEXT,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	}
}

// Migrate creates the extension, tables and indexes if they are missing. The
// chunk embedding column is fixed to dim.
func Migrate(ctx context.Context, db *DB, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid embedding dimension %d", dim)
	}
	for _, stmt := range schemaStatements(dim) {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return persistErr("migrate", err)
		}
	}
	return nil
}
