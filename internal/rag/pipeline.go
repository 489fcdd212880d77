package rag

import (
	"context"
	"fmt"
	"sync/atomic"

	"docqa/internal/models"
	"docqa/internal/util"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type PipelineOptions struct {
	ChunkSize    int
	ChunkOverlap int
	Concurrency  int
}

// IngestResult summarizes one ingestion run. Saved < Total means the run
// stopped early and the document only has partial coverage.
type IngestResult struct {
	DocumentID string
	Total      int
	Saved      int
}

type Pipeline struct {
	embedder Embedder
	chunks   ChunkStore
	opts     PipelineOptions
}

func NewPipeline(embedder Embedder, chunks ChunkStore, opts PipelineOptions) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Pipeline{embedder: embedder, chunks: chunks, opts: opts}
}

func (p *Pipeline) Chunk(text string) []string {
	return util.ChunkText(text, p.opts.ChunkSize, p.opts.ChunkOverlap)
}

// EmbedAndSave stores one chunk with its vector.
func (p *Pipeline) EmbedAndSave(ctx context.Context, documentID string, index int, text string) (models.Chunk, error) {
	vec, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return models.Chunk{}, fmt.Errorf("embed chunk %d: %w", index, err)
	}
	c, err := p.chunks.SaveChunk(ctx, models.NewChunk{
		DocumentID: documentID,
		Index:      index,
		Text:       text,
		Embedding:  vec,
	})
	if err != nil {
		return models.Chunk{}, fmt.Errorf("save chunk %d: %w", index, err)
	}
	return c, nil
}

// Ingest chunks text and embeds the chunks with bounded concurrency. After the
// first failure no further chunk is started; chunks already started finish on
// ctx and saved chunks are kept.
func (p *Pipeline) Ingest(ctx context.Context, documentID, text string) (IngestResult, error) {
	pieces := p.Chunk(text)
	res := IngestResult{DocumentID: documentID, Total: len(pieces)}
	if len(pieces) == 0 {
		return res, nil
	}

	var (
		saved  atomic.Int64
		failed atomic.Bool
		g      errgroup.Group
	)
	sem := semaphore.NewWeighted(int64(p.opts.Concurrency))
	for i, piece := range pieces {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		// A failing chunk sets failed before it frees its slot.
		if failed.Load() {
			sem.Release(1)
			break
		}
		i, piece := i, piece
		g.Go(func() error {
			defer sem.Release(1)
			if _, err := p.EmbedAndSave(ctx, documentID, i, piece); err != nil {
				failed.Store(true)
				return err
			}
			saved.Add(1)
			return nil
		})
	}
	err := g.Wait()
	res.Saved = int(saved.Load())
	if err == nil && res.Saved < res.Total {
		err = fmt.Errorf("ingestion interrupted: %w", context.Cause(ctx))
	}
	if err != nil {
		return res, fmt.Errorf("ingest document %s: %w", documentID, err)
	}
	return res, nil
}
