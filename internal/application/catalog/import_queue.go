package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when no slot is free for another import job
	ErrQueueFull = errors.New("import queue is full")
	// ErrQueueClosed is returned after Stop
	ErrQueueClosed = errors.New("import queue is closed")
)

// ImportJob asks for one feed import run
type ImportJob struct {
	OwnerID   uint64
	URL       string
	RequestID string
}

// URLImporter runs a single import
type URLImporter interface {
	ImportURL(ctx context.Context, ownerID uint64, rawURL string) (*catalog.ImportSummary, error)
}

// QueueConfig sizes the worker pool
type QueueConfig struct {
	Workers   int
	QueueSize int
}

// ImportQueue runs import jobs on background workers.
// Delivery is at most once: a job lost to a crash is not retried.
type ImportQueue struct {
	importer URLImporter
	recorder ImportRecorder
	logger   *zap.Logger
	cfg      QueueConfig

	mu      sync.RWMutex
	jobs    chan ImportJob
	running bool
	closed  bool
	wg      sync.WaitGroup
}

// NewImportQueue creates a stopped queue
func NewImportQueue(importer URLImporter, recorder ImportRecorder, log *zap.Logger, cfg QueueConfig) *ImportQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ImportQueue{
		importer: importer,
		recorder: recorder,
		logger:   log,
		cfg:      cfg,
		jobs:     make(chan ImportJob, cfg.QueueSize),
	}
}

// Enqueue hands a job to the workers without waiting for it to run
func (q *ImportQueue) Enqueue(job ImportJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		q.recorder.ImportQueueDepth(len(q.jobs))
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the workers
func (q *ImportQueue) Start(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.running {
		return nil
	}
	q.running = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.logger.Info("import queue started",
		zap.Int("workers", q.cfg.Workers),
		zap.Int("queue_size", q.cfg.QueueSize),
	)
	return nil
}

// Stop refuses new jobs and waits for queued ones until ctx is done
func (q *ImportQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	running := q.running
	q.mu.Unlock()

	if !running {
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("import queue stopped")
		return nil
	case <-ctx.Done():
		q.logger.Warn("import queue stop timed out with jobs pending", zap.Int("pending", len(q.jobs)))
		return ctx.Err()
	}
}

// Pending returns the number of jobs waiting for a worker
func (q *ImportQueue) Pending() int {
	return len(q.jobs)
}

func (q *ImportQueue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.recorder.ImportQueueDepth(len(q.jobs))
		q.run(job)
	}
}

func (q *ImportQueue) run(job ImportJob) {
	ctx := logger.WithContext(context.Background(), q.logger.With(zap.String("url", job.URL)))
	if job.RequestID != "" {
		ctx = logger.WithRequestID(ctx, job.RequestID)
	}
	ctx = logger.WithUserID(ctx, job.OwnerID)
	log := logger.L(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("import job panicked", zap.Any("panic", r))
		}
	}()

	log.Info("import job started")
	// outcome is logged and recorded by the importer
	_, _ = q.importer.ImportURL(ctx, job.OwnerID, job.URL)
}
