package batch

import (
	"context"
	"fmt"
)

// Task is the unit of work submitted to Execute.
// It takes a context and returns a result of type R and an error.
// The context is cancelled when the task times out or the batch is abandoned;
// honouring it is optional.
//
// Example:
//
//	t := TaskFunc(func(ctx context.Context) (int, error) { return 42, nil })
//	_ = t
type Task[R any] func(context.Context) (R, error)

// TaskFunc adapts func(ctx) (R, error) to Task[R].
func TaskFunc[R any](fn func(context.Context) (R, error)) Task[R] { return Task[R](fn) }

// TaskValue adapts func(ctx) R to Task[R].
func TaskValue[R any](fn func(context.Context) R) Task[R] {
	return func(ctx context.Context) (R, error) { return fn(ctx), nil }
}

// TaskError adapts func(ctx) error to Task[R].
// The returned Task yields the zero value of R alongside the error.
func TaskError[R any](fn func(context.Context) error) Task[R] {
	return func(ctx context.Context) (R, error) { var zero R; return zero, fn(ctx) }
}

// outcome is what a worker learns about a single task invocation.
type outcome[R any] struct {
	val R
	err error
}

// execTask runs call in its own goroutine with panic recovery and returns as soon as
// either call finishes or ctx is done. On ctx.Done the goroutine is abandoned; its
// result is written to a buffered channel and dropped.
func execTask[R any](ctx context.Context, call func() (R, error)) (R, error) {
	done := make(chan outcome[R], 1)

	go func() {
		var o outcome[R]
		defer func() {
			if ePanic := recover(); ePanic != nil {
				o = outcome[R]{err: fmt.Errorf("%w: %v", ErrTaskPanicked, ePanic)}
			}
			done <- o
		}()

		o.val, o.err = call()
	}()

	select {
	case <-ctx.Done():
		var zero R
		return zero, context.Cause(ctx)
	case o := <-done:
		return o.val, o.err
	}
}
