// Package worker ranks queued uploads.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/demandrank/internal/adapters/mq/queue"
	"github.com/okian/demandrank/internal/domain/scoring"
	"github.com/okian/demandrank/internal/domain/table"
	"github.com/okian/demandrank/pkg/logger"
	"github.com/okian/demandrank/pkg/metrics"
)

const (
	defaultJobTimeout   = 30 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Loader reads a saved upload into a table.
type Loader interface {
	Load(ctx context.Context, path string) (*table.Table, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (*table.Table, error)

// Load calls f(ctx, path).
func (f LoaderFunc) Load(ctx context.Context, path string) (*table.Table, error) {
	return f(ctx, path)
}

// Ranker scores a loaded table.
type Ranker interface {
	ScoreTable(ctx context.Context, tbl *table.Table) (scoring.Ranking, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker. Jobs still waiting are answered with ErrStopped.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker loads and ranks one job at a time.
type InMemoryWorker struct {
	queue      Queue
	loader     Loader
	ranker     Ranker
	name       string
	jobTimeout time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, loader Loader, ranker Ranker, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		loader:     loader,
		ranker:     ranker,
		name:       "worker",
		jobTimeout: defaultJobTimeout,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			w.drain(jobs, ctx.Err())
			return
		case <-w.shutdown:
			w.drain(jobs, ErrStopped)
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(job)
		}
	}
}

// drain answers jobs that are immediately available with err.
func (w *InMemoryWorker) drain(jobs <-chan queue.Job, err error) {
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			job.Respond(queue.Result{Err: err})
		default:
			return
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one job and always replies.
func (w *InMemoryWorker) process(job queue.Job) {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		w.logger.Debug(ctx, "job abandoned before start", logger.String("job_id", job.ID))
		job.Respond(queue.Result{Err: err})
		return
	}
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	metrics.AddWorkerBusy(1)
	defer func() {
		metrics.AddWorkerBusy(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	ranking, err := w.rank(ctx, job)
	if err != nil {
		w.recordFailure(ctx, job, err)
	} else {
		metrics.RecordRows(ranking.RowsRead, ranking.RowsInWindow)
		metrics.RecordProductsRanked(len(ranking.Products))
		w.logger.Info(ctx, "upload ranked",
			logger.String("job_id", job.ID),
			logger.String("filename", job.Filename),
			logger.Int("rows", ranking.RowsRead),
			logger.Int("rows_in_window", ranking.RowsInWindow),
			logger.Int("products", len(ranking.Products)),
			logger.Duration("elapsed", time.Since(start)),
		)
	}
	job.Respond(queue.Result{Ranking: ranking, Err: err})
}

func (w *InMemoryWorker) rank(ctx context.Context, job queue.Job) (ranking scoring.Ranking, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = scoring.Unreadable(job.Filename, fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	tbl, err := w.loader.Load(ctx, job.Path)
	if err != nil {
		// Cancellation is the caller's doing, not a bad file.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return scoring.Ranking{}, fmt.Errorf("load %s: %w", job.Filename, err)
		}
		return scoring.Ranking{}, scoring.Unreadable(job.Filename, err)
	}

	scoreStart := time.Now()
	ranking, err = w.ranker.ScoreTable(ctx, tbl)
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Milliseconds()))
	return ranking, err
}

func (w *InMemoryWorker) recordFailure(ctx context.Context, job queue.Job, err error) {
	var verr *scoring.ValidationError
	if errors.As(err, &verr) {
		kind := scoring.KindName(err)
		metrics.RecordValidationError(kind)
		w.logger.Warn(ctx, "upload rejected",
			logger.String("job_id", job.ID),
			logger.String("filename", job.Filename),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return
	}

	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", "ranking_error")
	metrics.RecordErrorByType("ranking_error", "high")
	w.logger.Error(ctx, "ranking failed",
		logger.String("job_id", job.ID),
		logger.String("filename", job.Filename),
		logger.Error(err),
	)
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers sharing q. A count below 1 means one
// worker per CPU. opts apply to every worker.
func NewPool(workerCount int, q Queue, loader Loader, ranker Ranker, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range pool.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, loader, ranker, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue, then stops every worker.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
