package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchProcessor runs a pipeline over many analyses concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: Batch execution is separate from Pipeline so that a
// Pipeline stays a single-job sequence and each job gets a fresh one
// from the factory.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each job.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent jobs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed jobs in input order.
	// Access is synchronized via mutex.
	results []*Job
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Default is DefaultConcurrency.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// DefaultConcurrency bounds the number of simultaneous backend requests a
// batch issues. Stage-2 and stage-3 requests are expensive on the backend.
const DefaultConcurrency = 4

// NewBatchProcessor creates a new BatchProcessor.
// pipelineFactory is called once per job.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
		results:         make([]*Job, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs the pipeline for every analysis id.
//
// Returns one job per id, in input order, even for ids that failed; a
// job's own error is on job.Err. The error return is set only when the
// batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, ids []string) ([]*Job, error) {
	bp.logger.Info("starting batch processing",
		"total_jobs", len(ids),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.results = make([]*Job, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("processing analysis",
				"analysis_id", id,
				"index", i+1,
				"total", len(ids),
			)

			job := NewJob(id)
			err := bp.pipelineFactory().Execute(ctx, job)

			bp.mu.Lock()
			bp.results[i] = job
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("analysis failed",
					"analysis_id", id,
					"error", err,
				)
				// The error is on the job; keep processing the others.
				return nil
			}

			bp.logger.Info("analysis completed",
				"analysis_id", id,
			)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_jobs", len(ids),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback runs the pipeline for every analysis id and
// calls callback as each job finishes. The callback runs on the job's
// goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	ids []string,
	callback func(job *Job, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_jobs", len(ids),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := NewJob(id)
			_ = bp.pipelineFactory().Execute(ctx, job) //nolint:errcheck // Error is stored on the job

			callback(job, i)
			return nil
		})
	}

	return g.Wait()
}
