// Package async provides a cancellable background job carrying one result.
package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"
)

// Task runs a function on its own goroutine and holds its single result.
//
// Cancellation is cooperative: Cancel cancels the context handed to the
// function, which is expected to return early. Wait blocks until the
// function has returned, whether it finished or honoured the cancellation.
type Task[T any] struct {
	cancel context.CancelFunc
	ctx    context.Context
	done   chan struct{}

	wg conc.WaitGroup

	mu       sync.Mutex
	result   T
	panicErr error
}

// Run starts fn in the background. fn receives a context derived from parent
// that is cancelled by Task.Cancel.
func Run[T any](parent context.Context, fn func(ctx context.Context) T) *Task[T] {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	t := &Task[T]{
		cancel: cancel,
		ctx:    ctx,
		done:   make(chan struct{}),
	}

	t.wg.Go(func() {
		res := fn(ctx)
		t.mu.Lock()
		t.result = res
		t.mu.Unlock()
	})

	go func() {
		recovered := t.wg.WaitAndRecover()
		if recovered != nil {
			t.mu.Lock()
			t.panicErr = fmt.Errorf("task panicked: %v", recovered.Value)
			t.mu.Unlock()
		}
		close(t.done)
	}()

	return t
}

// Cancel requests cooperative cancellation. Safe to call more than once.
func (t *Task[T]) Cancel() {
	t.cancel()
}

// Cancelled reports whether Cancel was called (or the parent context ended).
func (t *Task[T]) Cancelled() bool {
	return t.ctx.Err() != nil
}

// Done is closed once the function has returned.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the function has returned and yields its result.
// A panicking function yields the zero value.
func (t *Task[T]) Wait() T {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Err returns the recovered panic, if any, once the task is done.
func (t *Task[T]) Err() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.panicErr
}
