// Package worker provides the bounded task pool backing the webhook
// dispatcher. The webhook acknowledges immediately; the pool runs the
// generation and reply work off the request path.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aula-labs/tutorbot/pkg/logger"
	"github.com/aula-labs/tutorbot/pkg/metrics"
)

// Task is one unit of background work: answer one chat message.
type Task struct {
	ChatID int64
	Text   string
}

// ProcessFunc runs a task to completion. It must not panic and has no error
// return: failures end inside the task as user-facing apologies.
type ProcessFunc func(ctx context.Context, chatID int64, text string)

// Pool runs tasks on a fixed number of workers fed by a buffered queue.
// A full queue drops the task rather than blocking the webhook.
type Pool struct {
	tasks   chan Task
	process ProcessFunc
	logger  *logger.Logger
	workers int

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given worker count and queue capacity.
func NewPool(workers, queueSize int, process ProcessFunc, log *logger.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	return &Pool{
		tasks:   make(chan Task, queueSize),
		process: process,
		logger:  log,
		workers: workers,
	}
}

// Start launches the workers. ctx is the base context handed to every task;
// canceling it aborts in-flight upstream calls during shutdown.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for task := range p.tasks {
		metrics.TaskQueueDepth.Set(float64(len(p.tasks)))
		metrics.TasksInFlight.Inc()
		p.process(ctx, task.ChatID, task.Text)
		metrics.TasksInFlight.Dec()
	}
}

// Submit enqueues a task without blocking. It reports false when the queue is
// full or the pool is already shut down; callers still acknowledge the
// webhook either way.
func (p *Pool) Submit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.tasks <- task:
		metrics.TaskQueueDepth.Set(float64(len(p.tasks)))
		return true
	default:
		p.logger.Warn("task queue full, dropping update",
			zap.Int64("chat_id", task.ChatID),
		)
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued and in-flight tasks to
// finish.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	started := p.started
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	if started {
		p.wg.Wait()
	}
}
