package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/bom-validator/internal/entity"
	"github.com/joseph-ayodele/bom-validator/internal/pipeline"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one folder to be extracted and, optionally, reconciled.
type Job struct {
	FolderID    string
	Compare     bool
	Force       bool // enqueue even if the folder is already queued
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// FolderProcessor runs the extractors of a folder.
type FolderProcessor interface {
	ProcessFolder(ctx context.Context, folderID string) (pipeline.Results, error)
}

// Comparer reconciles the artifacts of a folder.
type Comparer interface {
	Compare(ctx context.Context, sessionID string) (*entity.Comparison, error)
}

type ProcessorQueue struct {
	proc    FolderProcessor
	cmp     Comparer
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool

	// queued and running are guarded by pmu; workers never take mu.
	pmu     sync.Mutex
	queued  map[string]int
	running map[string]int
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewProcessorQueue starts the workers. cmp may be nil, in which case Compare jobs only extract.
func NewProcessorQueue(proc FolderProcessor, cmp Comparer, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		cmp:     cmp,
		logger:  logger,
		workers: 2,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 64),
		queued:  map[string]int{},
		running: map[string]int{},
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					q.handle(workerID, job)
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) handle(workerID int, job Job) {
	q.begin(job.FolderID)
	defer q.finish(job.FolderID)

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	results, err := q.proc.ProcessFolder(ctx, job.FolderID)
	if err != nil {
		q.logger.Error("queue.job.failed", "worker_id", workerID, "folder_id", job.FolderID, "stage", "process", "error", err)
		return
	}
	q.logger.Info("queue.job.processed", "worker_id", workerID, "folder_id", job.FolderID,
		"result", results.Summary(), "waited_ms", time.Since(job.SubmittedAt).Milliseconds())

	if !job.Compare || q.cmp == nil {
		return
	}
	cmp, err := q.cmp.Compare(ctx, job.FolderID)
	if err != nil {
		q.logger.Warn("queue.job.failed", "worker_id", workerID, "folder_id", job.FolderID, "stage", "compare", "error", err)
		return
	}
	q.logger.Info("queue.job.compared", "worker_id", workerID, "folder_id", job.FolderID, "components", len(cmp.Entries))
}

// begin moves a folder from queued to running.
func (q *ProcessorQueue) begin(folderID string) {
	q.pmu.Lock()
	defer q.pmu.Unlock()
	decrement(q.queued, folderID)
	q.running[folderID]++
}

func (q *ProcessorQueue) finish(folderID string) {
	q.pmu.Lock()
	defer q.pmu.Unlock()
	decrement(q.running, folderID)
}

func (q *ProcessorQueue) unqueue(folderID string) {
	q.pmu.Lock()
	defer q.pmu.Unlock()
	decrement(q.queued, folderID)
}

func decrement(m map[string]int, key string) {
	if m[key] <= 1 {
		delete(m, key)
		return
	}
	m[key]--
}

// Enqueue schedules job. A folder that is still waiting in the buffer is skipped unless Force is set;
// a folder that is only running is queued again, so changes made during a run are picked up.
// It blocks while the buffer is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.rejected", "folder_id", job.FolderID, "reason", "closed")
		return ErrQueueClosed
	}
	q.pmu.Lock()
	if q.queued[job.FolderID] > 0 && !job.Force {
		q.pmu.Unlock()
		q.logger.Debug("queue.enqueue.deduplicated", "folder_id", job.FolderID)
		return nil
	}
	q.queued[job.FolderID]++
	q.pmu.Unlock()

	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue.full", "folder_id", job.FolderID)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			q.unqueue(job.FolderID)
			return ctx.Err()
		}
	}
	q.logger.Info("queue.enqueued", "folder_id", job.FolderID, "compare", job.Compare, "force", job.Force)
	return nil
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.complete")
	}
}
