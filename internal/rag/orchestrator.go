package rag

import (
	"context"
	"log/slog"
	"strings"

	"docqa/internal/models"
	"docqa/internal/providers"
)

const SystemPromptPrefix = "You are a helpful assistant. Here is the context to use to reply to questions: "

type OrchestratorOptions struct {
	// MaxContextChars bounds the joined context in runes; <= 0 disables it.
	MaxContextChars int
	Recorder        CallRecorder
	Logger          *slog.Logger
}

type Orchestrator struct {
	embedder  Embedder
	retriever Retriever
	llm       providers.LLMProvider
	llmName   string
	opts      OrchestratorOptions
	logger    *slog.Logger
}

func NewOrchestrator(embedder Embedder, retriever Retriever, llm providers.LLMProvider, llmName string, opts OrchestratorOptions) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		embedder:  embedder,
		retriever: retriever,
		llm:       llm,
		llmName:   llmName,
		opts:      opts,
		logger:    logger,
	}
}

// Retrieve embeds the question and returns the document's nearest chunks.
func (o *Orchestrator) Retrieve(ctx context.Context, documentID, question string) ([]models.ChunkResult, error) {
	vec, err := o.embedder.Embed(ctx, question)
	if err != nil {
		return nil, &AnswerError{DocumentID: documentID, Stage: StageEmbed, Err: err}
	}
	results, err := o.retriever.Search(ctx, documentID, vec)
	if err != nil {
		return nil, &AnswerError{DocumentID: documentID, Stage: StageSearch, Err: err}
	}
	return results, nil
}

// Answer grounds the completion on the retrieved chunks. An empty retrieval
// still reaches the model with an empty context.
func (o *Orchestrator) Answer(ctx context.Context, documentID, question string) (string, error) {
	results, err := o.Retrieve(ctx, documentID, question)
	if err != nil {
		return "", err
	}
	contextText := BuildContext(results, o.opts.MaxContextChars)

	resp, info, err := o.llm.Generate(ctx, providers.GenerateRequest{
		Operation: "answer",
		System:    SystemPromptPrefix + contextText,
		Prompt:    question,
	})
	o.record(ctx, documentID, info, err)
	if err != nil {
		name := info.Name
		if name == "" {
			name = o.llmName
		}
		return "", &AnswerError{DocumentID: documentID, Stage: StageComplete, Err: providers.NewCompletionError(name, err)}
	}
	return resp.Text, nil
}

func (o *Orchestrator) record(ctx context.Context, documentID string, info providers.ProviderInfo, callErr error) {
	if o.opts.Recorder == nil {
		return
	}
	rec := models.LLMCall{
		Operation:  "answer",
		DocumentID: documentID,
		Provider:   info.Name,
		Model:      info.Model,
		Status:     "ok",
	}
	if rec.Provider == "" {
		rec.Provider = o.llmName
	}
	if callErr != nil {
		rec.Status = "error"
		rec.ErrorType = string(providers.ClassifyError(callErr))
	}
	if err := o.opts.Recorder.RecordCall(ctx, rec); err != nil {
		o.logger.Warn("record llm call failed", "document_id", documentID, "error", err)
	}
}

// BuildContext joins chunk texts nearest first with single spaces. When the
// result would exceed maxChars runes the farthest chunks are dropped; a
// nearest chunk that alone exceeds the bound is cut to it.
func BuildContext(results []models.ChunkResult, maxChars int) string {
	var b strings.Builder
	used := 0
	for i, r := range results {
		n := len([]rune(r.Text))
		sep := 0
		if i > 0 {
			sep = 1
		}
		if maxChars > 0 && used+sep+n > maxChars {
			if i == 0 {
				b.WriteString(string([]rune(r.Text)[:maxChars]))
			}
			break
		}
		if sep == 1 {
			b.WriteByte(' ')
		}
		b.WriteString(r.Text)
		used += sep + n
	}
	return b.String()
}
