package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/providers"
	"docqa/internal/rag"
	"docqa/internal/storage"
	"docqa/internal/vector"
)

// Components is the wired question-answering core shared by the API and the
// worker binaries.
type Components struct {
	Docs         rag.DocumentStore
	Chunks       rag.ChunkStore
	Recorder     rag.CallRecorder
	Pipeline     *rag.Pipeline
	Orchestrator *rag.Orchestrator

	db *storage.DB
}

// Build opens the configured store and resolves providers. Postgres is
// migrated on startup.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Components, error) {
	c := &Components{}
	switch cfg.Store {
	case config.StoreMemory:
		mem := storage.NewMemoryStore()
		c.Docs, c.Chunks, c.Recorder = mem, mem, mem
	case config.StorePostgres:
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		db, err := storage.NewDB(dbCtx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := storage.Migrate(dbCtx, db, cfg.EmbedDim); err != nil {
			db.Close()
			return nil, err
		}
		c.db = db
		c.Docs = storage.NewDocumentRepo(db)
		c.Chunks = storage.NewChunkRepo(db)
		c.Recorder = storage.NewCallAuditRepo(db)
	default:
		return nil, fmt.Errorf("unsupported store: %s", cfg.Store)
	}

	mgr, err := providers.NewManager(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	embedProvider, embedRef := mgr.Embedder()
	llm, llmRef := mgr.Completer()

	emb := embedding.NewClient(embedProvider, embedRef.Raw, embedding.Options{
		Dimension:         cfg.EmbedDim,
		RequestsPerSecond: float64(cfg.EmbedRPS),
		Burst:             cfg.EmbedBurst,
	})
	c.Pipeline = rag.NewPipeline(emb, c.Chunks, rag.PipelineOptions{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Concurrency:  cfg.IngestConcurrency,
	})
	c.Orchestrator = rag.NewOrchestrator(emb, vector.NewSearcher(c.Chunks, cfg.EmbedDim, cfg.TopK), llm, llmRef.Raw, rag.OrchestratorOptions{
		MaxContextChars: cfg.MaxContextChars,
		Recorder:        c.Recorder,
		Logger:          logger,
	})
	logger.Info("components ready", "store", cfg.Store, "embed_provider", embedRef.Raw, "llm_provider", llmRef.Raw, "embed_dim", cfg.EmbedDim)
	return c, nil
}

func (c *Components) Close() {
	if c.db != nil {
		c.db.Close()
	}
}
