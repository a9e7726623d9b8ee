// Package service wires the upload store, job queue, worker pool and scorer
// into the operations served by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/demandrank/internal/adapters/mq/queue"
	"github.com/okian/demandrank/internal/adapters/mq/worker"
	"github.com/okian/demandrank/internal/adapters/sheet"
	"github.com/okian/demandrank/internal/adapters/upload"
	"github.com/okian/demandrank/internal/domain/scoring"
	"github.com/okian/demandrank/internal/domain/table"
	"github.com/okian/demandrank/pkg/logger"
	"github.com/okian/demandrank/pkg/metrics"
)

// Upload outcomes recorded in metrics and stats.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeBusy     = "busy"
	OutcomeError    = "error"
)

// Service ranks uploaded spreadsheets on a bounded worker pool.
type Service struct {
	mu sync.RWMutex

	store  *upload.Store
	queue  *queue.InMemoryQueue
	scorer *scoring.Scorer
	pool   *worker.Pool
	cancel context.CancelFunc

	workerCount       int
	queueSize         int
	jobTimeout        time.Duration
	uploadDir         string
	maxUploadBytes    int64
	allowedExtensions []string
	sheetName         string
	strictCoV         bool

	started bool

	ranked   atomic.Int64
	invalid  atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU(),
		queueSize:         64,
		jobTimeout:        30 * time.Second,
		uploadDir:         "/tmp/uploads",
		maxUploadBytes:    16 << 20,
		allowedExtensions: []string{sheet.ExtXLSX, sheet.ExtXLS},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the components and starts the workers. Calling Start on a
// started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.store = upload.New(
		upload.WithDir(s.uploadDir),
		upload.WithMaxBytes(s.maxUploadBytes),
		upload.WithAllowedExtensions(s.allowedExtensions),
	)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.scorer = scoring.New(scoring.WithStrictCoVNormalization(s.strictCoV))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.LoaderFunc(s.load), s.scorer,
		worker.WithJobTimeout(s.jobTimeout),
	)

	// Workers outlive the Start call's context; Stop cancels them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.String("upload_dir", s.uploadDir),
		logger.Bool("strict_cov", s.strictCoV),
	)
	return nil
}

func (s *Service) load(ctx context.Context, path string) (*table.Table, error) {
	return sheet.Load(ctx, path, sheet.WithSheetName(s.sheetName))
}

// Stop shuts the worker pool down. Waiting uploads are answered with an error.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping ranking service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not stop cleanly", logger.Error(err))
	}
	s.cancel()
	for job := range s.queue.Dequeue(ctx) {
		job.Respond(queue.Result{Err: worker.ErrStopped})
	}

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

// Allowed reports whether filename has an accepted extension.
func (s *Service) Allowed(filename string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return upload.New(upload.WithAllowedExtensions(s.allowedExtensions)).Allowed(filename)
	}
	return s.store.Allowed(filename)
}

// AllowedExtensions returns the accepted upload extensions.
func (s *Service) AllowedExtensions() []string {
	return append([]string(nil), s.allowedExtensions...)
}

// RankUpload stores r, queues it for a worker and waits for the ranking.
// Data problems come back as *scoring.ValidationError. The stored file is
// removed once the worker is done with it.
func (s *Service) RankUpload(ctx context.Context, filename string, r io.Reader) (scoring.Ranking, error) {
	s.mu.RLock()
	started, store, q := s.started, s.store, s.queue
	s.mu.RUnlock()

	if !started {
		return scoring.Ranking{}, ErrNotStarted
	}
	if !store.Allowed(filename) {
		s.count(OutcomeRejected)
		return scoring.Ranking{}, fmt.Errorf("%w: %s", ErrNotAllowed, filename)
	}

	u, err := store.Save(ctx, filename, r)
	if err != nil {
		s.count(OutcomeRejected)
		return scoring.Ranking{}, fmt.Errorf("save upload: %w", err)
	}
	cleanup := func() {
		_ = store.Remove(context.WithoutCancel(ctx), u)
	}

	job := queue.NewJob(ctx, uuid.NewString(), u.Path, filename)
	if !q.Enqueue(ctx, job) {
		cleanup()
		s.count(OutcomeBusy)
		s.logger.Warn(ctx, "queue full, upload rejected", logger.String("filename", filename))
		return scoring.Ranking{}, ErrBusy
	}

	select {
	case res := <-job.Reply:
		cleanup()
		return s.finish(res)
	case <-ctx.Done():
		go func() {
			<-job.Reply
			cleanup()
		}()
		s.count(OutcomeError)
		return scoring.Ranking{}, ctx.Err()
	}
}

func (s *Service) finish(res queue.Result) (scoring.Ranking, error) {
	var verr *scoring.ValidationError
	switch {
	case res.Err == nil:
		s.count(OutcomeOK)
	case errors.As(res.Err, &verr):
		s.count(OutcomeInvalid)
	default:
		s.count(OutcomeError)
	}
	return res.Ranking, res.Err
}

func (s *Service) count(outcome string) {
	metrics.RecordUpload(outcome)
	switch outcome {
	case OutcomeOK:
		s.ranked.Add(1)
	case OutcomeInvalid:
		s.invalid.Add(1)
	case OutcomeRejected, OutcomeBusy:
		s.rejected.Add(1)
	default:
		s.failed.Add(1)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"jobTimeoutMs":    s.jobTimeout.Milliseconds(),
		"uploadsRanked":   s.ranked.Load(),
		"uploadsInvalid":  s.invalid.Load(),
		"uploadsRejected": s.rejected.Load(),
		"uploadsFailed":   s.failed.Load(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
		stats["workerCount"] = s.pool.Size()
	}
	return stats
}
