package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"docqa/internal/rag"
)

var (
	ErrQueueFull   = errors.New("ingest queue full")
	ErrQueueClosed = errors.New("ingest queue closed")
)

type Ingester interface {
	Ingest(ctx context.Context, documentID, text string) (rag.IngestResult, error)
}

type LocalQueueOptions struct {
	Workers   int
	QueueSize int
	// OnDone runs after every job; it defaults to a structured log line.
	OnDone func(res rag.IngestResult, err error)
	Logger *slog.Logger
}

// LocalQueue runs ingestion jobs on in-process workers. Jobs run on a context
// detached from the submitting request, so an upload returning does not cancel
// its ingestion.
type LocalQueue struct {
	ingester Ingester
	jobs     chan rag.IngestJob
	onDone   func(rag.IngestResult, error)
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewLocalQueue(ing Ingester, opts LocalQueueOptions) *LocalQueue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &LocalQueue{
		ingester: ing,
		jobs:     make(chan rag.IngestJob, opts.QueueSize),
		logger:   logger,
		baseCtx:  ctx,
		cancel:   cancel,
	}
	q.onDone = opts.OnDone
	if q.onDone == nil {
		q.onDone = q.logResult
	}
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Submit enqueues without blocking; a full queue rejects the job.
func (q *LocalQueue) Submit(_ context.Context, job rag.IngestJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops intake and waits for queued jobs to finish. If ctx expires first
// the running jobs are cancelled and ctx's error is returned.
func (q *LocalQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *LocalQueue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		res, err := q.ingester.Ingest(q.baseCtx, job.DocumentID, job.Text)
		q.onDone(res, err)
	}
}

func (q *LocalQueue) logResult(res rag.IngestResult, err error) {
	if err != nil {
		q.logger.Error("ingestion failed",
			"document_id", res.DocumentID,
			"saved", res.Saved,
			"total", res.Total,
			"error", err,
		)
		return
	}
	q.logger.Info("ingestion completed", "document_id", res.DocumentID, "chunks", res.Saved)
}
