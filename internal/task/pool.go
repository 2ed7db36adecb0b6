package task

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Common errors returned by the WorkerPool
var (
	ErrPoolClosed = errors.New("worker pool is closed")
	ErrQueueFull  = errors.New("worker queue is full")
)

// defaultQueueSize bounds the number of workers waiting for a pool slot.
// With most-recent-wins submission the queue stays near empty; the buffer
// only absorbs bursts around retries.
const defaultQueueSize = 16

// DefaultPoolSize returns the worker pool capacity for this machine:
// the CPU count clamped to [2, 4]. A single shared model instance is the
// real bottleneck, so more concurrency would only add contention.
func DefaultPoolSize() int {
	n := runtime.NumCPU()
	if n < 2 {
		return 2
	}
	if n > 4 {
		return 4
	}
	return n
}

// WorkerPool executes workers on a fixed number of goroutines. Submission
// order is preserved (FIFO) and there is no priority. Workers are
// single-use; the pool never reuses a finished worker.
type WorkerPool struct {
	queue   chan *Worker
	size    int
	wg      sync.WaitGroup
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
	started bool
}

// NewWorkerPool creates a pool with the given capacity. A non-positive
// capacity uses DefaultPoolSize.
func NewWorkerPool(size int, logger *slog.Logger) *WorkerPool {
	if size <= 0 {
		size = DefaultPoolSize()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WorkerPool{
		queue:  make(chan *Worker, defaultQueueSize),
		size:   size,
		logger: logger.With("component", "worker_pool"),
	}
}

// Size returns the pool capacity.
func (p *WorkerPool) Size() int {
	return p.size
}

// Start launches the pool goroutines. Calling Start more than once is a
// no-op.
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.loop(i)
	}
	p.logger.Debug("worker pool started", "size", p.size)
}

// Submit enqueues a worker for execution. Returns ErrPoolClosed after
// Shutdown, or ErrQueueFull if the queue buffer is exhausted.
func (p *WorkerPool) Submit(w *Worker) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- w:
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(p.queue))
	}
}

// Shutdown stops accepting work and waits up to wait for in-flight
// workers to drain. Returns true if the pool drained in time.
func (p *WorkerPool) Shutdown(wait time.Duration) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return true
	}
	p.closed = true
	close(p.queue)
	started := p.started
	p.mu.Unlock()

	if !started {
		return true
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(wait):
		p.logger.Warn("worker pool shutdown timed out", "wait", wait)
		return false
	}
}

// loop drains the queue until it is closed.
func (p *WorkerPool) loop(id int) {
	defer p.wg.Done()

	for w := range p.queue {
		p.logger.Debug("worker picked up",
			"pool_worker", id,
			"task_id", w.taskID,
			"attempt", w.attempt)
		w.Run()
	}
}
