package workflows

import (
	"context"
	"errors"
	"testing"

	"docqa/internal/activities"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func newIngestEnv() *testsuite.TestWorkflowEnvironment {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(IngestDocumentWorkflow)
	registerActivityName(env, "ChunkDocumentActivity", func(context.Context, activities.ChunkDocumentInput) (activities.ChunkDocumentOutput, error) {
		return activities.ChunkDocumentOutput{}, nil
	})
	registerActivityName(env, "EmbedAndSaveChunkActivity", func(context.Context, activities.EmbedAndSaveChunkInput) (activities.EmbedAndSaveChunkOutput, error) {
		return activities.EmbedAndSaveChunkOutput{}, nil
	})
	return env
}

func TestIngestDocumentWorkflowSuccess(t *testing.T) {
	env := newIngestEnv()
	env.OnActivity("ChunkDocumentActivity", mock.Anything, activities.ChunkDocumentInput{DocumentID: "doc1"}).
		Return(activities.ChunkDocumentOutput{Chunks: []string{"a", "b", "c"}}, nil)
	env.OnActivity("EmbedAndSaveChunkActivity", mock.Anything, mock.Anything).
		Return(activities.EmbedAndSaveChunkOutput{ChunkID: 1}, nil).Times(3)

	env.ExecuteWorkflow(IngestDocumentWorkflow, IngestDocumentInput{DocumentID: "doc1", MaxConcurrent: 2})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out IngestDocumentResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusProcessed, out.Status)
	require.Equal(t, 3, out.Total)
	require.Equal(t, 3, out.Saved)
	env.AssertExpectations(t)
}

func TestIngestDocumentWorkflowStopsAtFailedBatch(t *testing.T) {
	env := newIngestEnv()
	chunks := []string{"c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7"}
	env.OnActivity("ChunkDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ChunkDocumentOutput{Chunks: chunks}, nil)
	calls := 0
	env.OnActivity("EmbedAndSaveChunkActivity", mock.Anything, mock.Anything).
		Return(func(_ context.Context, in activities.EmbedAndSaveChunkInput) (activities.EmbedAndSaveChunkOutput, error) {
			calls++
			if in.ChunkIndex == 4 {
				return activities.EmbedAndSaveChunkOutput{}, errors.New("embedding provider unavailable")
			}
			return activities.EmbedAndSaveChunkOutput{ChunkID: int64(in.ChunkIndex + 1)}, nil
		})

	env.ExecuteWorkflow(IngestDocumentWorkflow, IngestDocumentInput{DocumentID: "doc1", MaxConcurrent: 1})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out IngestDocumentResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusPartial, out.Status)
	require.Equal(t, 8, out.Total)
	require.Equal(t, 4, out.Saved)
	require.Equal(t, 5, calls)
	require.Contains(t, out.Error, "embedding provider unavailable")
}

func TestIngestDocumentWorkflowChunkFailure(t *testing.T) {
	env := newIngestEnv()
	env.OnActivity("ChunkDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ChunkDocumentOutput{}, errors.New("document not found"))

	env.ExecuteWorkflow(IngestDocumentWorkflow, IngestDocumentInput{DocumentID: "ghost"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out IngestDocumentResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusFailed, out.Status)
	require.Equal(t, 0, out.Total)
}

func TestIngestDocumentWorkflowEmptyDocument(t *testing.T) {
	env := newIngestEnv()
	env.OnActivity("ChunkDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ChunkDocumentOutput{Chunks: []string{}}, nil)

	env.ExecuteWorkflow(IngestDocumentWorkflow, IngestDocumentInput{DocumentID: "empty"})
	var out IngestDocumentResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusProcessed, out.Status)
}

func TestWorkflowID(t *testing.T) {
	require.Equal(t, "ingest-abc", WorkflowID("abc"))
}
