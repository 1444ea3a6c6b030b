package queue

import (
	"context"
	"sync"
	"time"

	"FinCast/pkg/logger"

	"github.com/google/uuid"
)

// MemoryQueue is a bounded in-process queue drained by a fixed worker pool.
type MemoryQueue struct {
	logger    *logger.Logger
	config    QueueConfig
	jobs      map[string]Job
	ch        chan Message
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	stopped   bool
	stopCh    chan struct{}
}

// NewMemoryQueue creates a queue. Zero config values get defaults.
func NewMemoryQueue(lgr *logger.Logger, config QueueConfig, jobs ...Job) *MemoryQueue {
	if lgr == nil {
		lgr = logger.Nop()
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 128
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 5 * time.Second
	}
	q := &MemoryQueue{
		logger: lgr,
		config: config,
		jobs:   make(map[string]Job),
		ch:     make(chan Message, config.QueueSize),
		stopCh: make(chan struct{}),
	}
	for _, j := range jobs {
		q.RegisterJob(j)
	}
	return q
}

// RegisterJob routes messages of job.Type() to job.
func (q *MemoryQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.jobs[job.Type()]; exists {
		q.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	q.jobs[job.Type()] = job
}

// Start launches the workers. Calling it again while running is a no-op.
func (q *MemoryQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrQueueStopped
	}
	if len(q.jobs) == 0 {
		return ErrNoJobs
	}
	if q.isRunning {
		return nil
	}
	q.isRunning = true
	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("memory queue started",
		logger.Int("workers", q.config.Workers),
		logger.Int("size", q.config.QueueSize))
	return nil
}

// Stop refuses new messages, drains what is buffered and waits for workers until ctx ends.
func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	running := q.isRunning
	close(q.stopCh)
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
		q.logger.Info("memory queue stopped gracefully")
		return nil
	case <-ctx.Done():
		q.logger.Warn("timeout waiting for queue workers", logger.Error(ctx.Err()))
		return ctx.Err()
	}
}

// Enqueue buffers payload without blocking.
func (q *MemoryQueue) Enqueue(_ context.Context, msgType string, payload interface{}) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return ErrQueueStopped
	}
	msg := Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// PublishMessage implements QueueService.
func (q *MemoryQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	return q.Enqueue(ctx, msgType, payload)
}

// Len reports buffered messages.
func (q *MemoryQueue) Len() int { return len(q.ch) }

func (q *MemoryQueue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case msg := <-q.ch:
			q.processMessage(msg)
		case <-q.stopCh:
			// drain what is already buffered
			for {
				select {
				case msg := <-q.ch:
					q.processMessage(msg)
				default:
					q.logger.Debug("queue worker stopping", logger.Int("worker_id", id))
					return
				}
			}
		}
	}
}

func (q *MemoryQueue) processMessage(msg Message) {
	q.mu.RLock()
	job, ok := q.jobs[msg.Type]
	q.mu.RUnlock()
	if !ok {
		q.logger.Error("no job found",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	for {
		ctx, cancel := context.WithTimeout(context.Background(), q.config.JobTimeout)
		err := job.Handle(ctx, msg.Payload)
		cancel()
		if err == nil {
			return
		}

		q.logger.Error("message processing error",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()),
			logger.Int("attempt", msg.Attempts+1),
			logger.Error(err))

		if msg.Attempts >= q.config.RetryLimit {
			q.logger.Warn("message dropped after retries",
				logger.String("id", msg.ID),
				logger.String("job", job.Name()))
			return
		}
		msg.Attempts++
		time.Sleep(q.config.RetryDelay)
	}
}

var _ QueueService = (*MemoryQueue)(nil)
