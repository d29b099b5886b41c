// Package mainloop provides control-thread scheduling primitives.
package mainloop

import (
	"context"
	"sync"
)

// Queue runs posted closures one at a time, in order, on a single goroutine.
// It stands in for the GTK main loop when no toolkit is running.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool
	done   chan struct{}
}

// NewQueue creates a queue. Call Run to start processing.
func NewQueue() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Dispatch appends fn to the queue. It never blocks; work posted after
// Close is dropped.
func (q *Queue) Dispatch(fn func()) {
	q.enqueue(fn)
}

func (q *Queue) enqueue(fn func()) bool {
	if fn == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.cond.Signal()
	return true
}

// Run processes tasks until Close is called or ctx ends, then drains what
// was already queued.
func (q *Queue) Run(ctx context.Context) {
	defer close(q.done)

	stop := context.AfterFunc(ctx, q.Close)
	defer stop()

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		fn := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		fn()
	}
}

// Close stops accepting work and lets Run return once drained.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Done is closed when Run has returned.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Call runs fn on the queue and waits for it to finish.
// It must not be called from the queue goroutine itself.
func (q *Queue) Call(fn func()) bool {
	finished := make(chan struct{})
	if !q.enqueue(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-q.done:
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}
