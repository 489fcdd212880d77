package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"docqa/internal/rag"
	"docqa/internal/workflows"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
)

// WorkflowStarter is the part of client.Client the queue needs.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalQueue hands ingestion to a Temporal worker. The job text is not sent;
// the workflow reloads the document by ID.
type TemporalQueue struct {
	starter       WorkflowStarter
	taskQueue     string
	maxConcurrent int
	logger        *slog.Logger
}

func NewTemporalQueue(starter WorkflowStarter, taskQueue string, maxConcurrent int, logger *slog.Logger) *TemporalQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemporalQueue{starter: starter, taskQueue: taskQueue, maxConcurrent: maxConcurrent, logger: logger}
}

func (q *TemporalQueue) Submit(ctx context.Context, job rag.IngestJob) error {
	we, err := q.starter.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                                       workflows.WorkflowID(job.DocumentID),
		TaskQueue:                                q.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.IngestDocumentWorkflow, workflows.IngestDocumentInput{
		DocumentID:    job.DocumentID,
		MaxConcurrent: q.maxConcurrent,
	})
	if err != nil {
		return fmt.Errorf("start ingest workflow: %w", err)
	}
	q.logger.Info("ingest workflow started", "document_id", job.DocumentID, "workflow_id", we.GetID(), "run_id", we.GetRunID())
	return nil
}
