package async

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context)

// WorkerPool runs tasks on a fixed number of goroutines. Each task gets its own
// timeout and a panic in one task does not take down its worker.
type WorkerPool struct {
	tasks   chan Task
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func NewWorkerPool(parent context.Context, size int, taskTimeout time.Duration, log *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(parent)
	p := &WorkerPool{
		tasks:   make(chan Task, size),
		ctx:     ctx,
		cancel:  cancel,
		timeout: taskTimeout,
		log:     log,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for task := range p.tasks {
		p.run(id, task)
	}
}

func (p *WorkerPool) run(id int, task Task) {
	ctx, cancel := p.ctx, context.CancelFunc(func() {})
	if p.timeout > 0 {
		ctx, cancel = context.WithTimeout(p.ctx, p.timeout)
	}
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", zap.Int("worker", id), zap.Any("panic", r))
		}
	}()
	task(ctx)
}

// Submit blocks until a worker accepts the task. It returns false once the
// pool is shut down, its parent context is done, or ctx is done.
func (p *WorkerPool) Submit(ctx context.Context, task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	case p.tasks <- task:
		return true
	}
}

// TrySubmit enqueues the task only if there is room right now.
func (p *WorkerPool) TrySubmit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued and running ones.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}
