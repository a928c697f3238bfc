package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/chainguard-dev/clog"

	"github.com/mathlilypeng/github-app/internal/task"
)

// Dispatcher is a channel-backed Listener with a bounded worker pool. Tasks
// for different issues run fully in parallel; there is no shared mutable state
// between them
type Dispatcher struct {
	results chan task.PatchResult
	workers int

	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates a dispatcher with the given worker pool size and
// buffer capacity
func NewDispatcher(workers int, buffer int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		results: make(chan task.PatchResult, buffer),
		workers: workers,
	}
}

// Enqueue submits a result for processing. It blocks while the buffer is full
// and fails if the context is cancelled first
func (d *Dispatcher) Enqueue(ctx context.Context, res task.PatchResult) error {
	select {
	case d.results <- res:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue cancelled: %w", ctx.Err())
	}
}

// Close stops delivery once all enqueued results have been handled
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.results)
}

// requeue re-submits a result without blocking. It reports false when the
// dispatcher is closed or the buffer is full
func (d *Dispatcher) requeue(res task.PatchResult) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.results <- res:
		return true
	default:
		return false
	}
}

// Listen runs the worker pool, invoking the handler for each result. It
// returns when the dispatcher is closed and drained, or when the context is
// cancelled
func (d *Dispatcher) Listen(ctx context.Context, handle Handler) error {
	var wg sync.WaitGroup
	for range d.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx, handle)
		}()
	}
	wg.Wait()

	return ctx.Err()
}

func (d *Dispatcher) work(ctx context.Context, handle Handler) {
	log := clog.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-d.results:
			if !ok {
				return
			}

			switch handle(ctx, res) {
			case Ack:
				// Done with this task
			case Requeue:
				// Best effort: if the buffer is full or we are shutting
				// down, the result is dropped and the loss is logged
				if !d.requeue(res) {
					log.With("issue", res.Task.IssueNumber).Warn("Dropping requeued result")
				}
			}
		}
	}
}
