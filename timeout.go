package batch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// runTask invokes t with its own child context and classifies the failure, if any.
//
// With timeout > 0 the wait is bounded; on expiry the child context is cancelled with
// ErrTaskTimeout as its cause and a *TimeoutError is returned. The task goroutine is not
// waited for: its late result is discarded by execTask.
//
// Every returned error is an *IndexedError carrying index.
func runTask[R any](ctx context.Context, index int, timeout time.Duration, t Task[R]) (R, error) {
	var (
		taskCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		taskCtx, cancel = context.WithTimeoutCause(ctx, timeout, ErrTaskTimeout)
	} else {
		taskCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := time.Now()
	res, err := execTask[R](taskCtx, func() (R, error) { return t(taskCtx) })
	if err == nil {
		return res, nil
	}

	var zero R
	cause := context.Cause(taskCtx)
	switch {
	case cause == nil:
		// the task failed on its own
		return zero, newIndexedError(err, index)
	case errors.Is(cause, ErrTaskTimeout) && ctx.Err() == nil:
		return zero, newIndexedError(&TimeoutError{Index: index, Timeout: timeout, Elapsed: time.Since(start)}, index)
	case errors.Is(err, cause) || errors.Is(err, context.Canceled):
		// cause may be another task's failure; only the context error is reported here
		return zero, newIndexedError(fmt.Errorf("%w: %w", ErrTaskCancelled, taskCtx.Err()), index)
	default:
		return zero, newIndexedError(err, index)
	}
}
