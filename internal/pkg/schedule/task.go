// Package schedule runs deferred work after a fixed delay.
//
// A Task can be cancelled only while it is still pending. Once its function
// has started it always runs to completion.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// ErrCancelled is returned by Wait when the task was cancelled before it started.
	ErrCancelled = errors.New("task cancelled before start")
	// ErrPanicked is returned by Wait when the task function panicked.
	ErrPanicked = errors.New("task panicked")
)

const (
	statePending int32 = iota
	stateRunning
	stateDone
	stateCancelled
)

// Task is a unit of work scheduled to run once after a delay.
type Task[T any] struct {
	timer  *time.Timer
	state  atomic.Int32
	done   chan struct{}
	result T
	err    error
}

// After schedules fn to run once d has elapsed.
func After[T any](d time.Duration, fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	t.timer = time.AfterFunc(d, func() {
		if !t.state.CompareAndSwap(statePending, stateRunning) {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				t.err = fmt.Errorf("%w: %v", ErrPanicked, r)
			}
			t.state.Store(stateDone)
			close(t.done)
		}()
		t.result, t.err = fn()
	})
	return t
}

// Cancel stops the task if it has not started yet and reports whether it did.
func (t *Task[T]) Cancel() bool {
	if !t.state.CompareAndSwap(statePending, stateCancelled) {
		return false
	}
	t.timer.Stop()
	close(t.done)
	return true
}

// Started reports whether the task function has begun running.
func (t *Task[T]) Started() bool {
	s := t.state.Load()
	return s == stateRunning || s == stateDone
}

// Wait blocks until the task finishes and returns its result.
// If ctx ends while the task is still pending, the task is cancelled and
// ctx.Err() is returned. If the task already started, Wait keeps waiting for it.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		if t.Cancel() {
			var zero T
			return zero, ctx.Err()
		}
		<-t.done
	}

	if t.state.Load() == stateCancelled {
		var zero T
		return zero, ErrCancelled
	}
	return t.result, t.err
}
