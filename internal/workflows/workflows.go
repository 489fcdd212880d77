package workflows

import (
	"time"

	"docqa/internal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetIngestProgress = "GetIngestProgress"

func WorkflowID(documentID string) string {
	return "ingest-" + documentID
}

// IngestDocumentWorkflow chunks a stored document and embeds the chunks in
// batches of MaxConcurrent activities. Activities are not retried. The first
// batch with a failure ends the run; saved chunks stay in place and the
// outcome is reported through the result status, not a workflow error.
func IngestDocumentWorkflow(ctx workflow.Context, input IngestDocumentInput) (IngestDocumentResult, error) {
	logger := workflow.GetLogger(ctx)
	progress := IngestDocumentResult{DocumentID: input.DocumentID, Status: StatusProcessing}
	if err := workflow.SetQueryHandler(ctx, QueryGetIngestProgress, func() (IngestDocumentResult, error) {
		return progress, nil
	}); err != nil {
		return progress, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var chunked activities.ChunkDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ChunkDocumentActivity", activities.ChunkDocumentInput{DocumentID: input.DocumentID}).Get(ctx, &chunked); err != nil {
		progress.Status = StatusFailed
		progress.Error = err.Error()
		logger.Error("chunk document failed", "document_id", input.DocumentID, "error", err)
		return progress, nil
	}
	progress.Total = len(chunked.Chunks)

	batch := input.MaxConcurrent
	if batch <= 0 {
		batch = 4
	}
	for i := 0; i < len(chunked.Chunks); i += batch {
		end := i + batch
		if end > len(chunked.Chunks) {
			end = len(chunked.Chunks)
		}
		futures := make([]workflow.Future, 0, end-i)
		for idx := i; idx < end; idx++ {
			futures = append(futures, workflow.ExecuteActivity(ctx, "EmbedAndSaveChunkActivity", activities.EmbedAndSaveChunkInput{
				DocumentID: input.DocumentID,
				ChunkIndex: idx,
				Text:       chunked.Chunks[idx],
			}))
		}
		var batchErr error
		for _, f := range futures {
			var out activities.EmbedAndSaveChunkOutput
			if err := f.Get(ctx, &out); err != nil {
				if batchErr == nil {
					batchErr = err
				}
				continue
			}
			progress.Saved++
		}
		if batchErr != nil {
			progress.Status = StatusPartial
			if progress.Saved == 0 {
				progress.Status = StatusFailed
			}
			progress.Error = batchErr.Error()
			logger.Error("ingestion stopped", "document_id", input.DocumentID, "saved", progress.Saved, "total", progress.Total, "error", batchErr)
			return progress, nil
		}
	}

	progress.Status = StatusProcessed
	logger.Info("ingestion completed", "document_id", input.DocumentID, "chunks", progress.Saved)
	return progress, nil
}
