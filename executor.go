package batch

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Execute runs tasks with at most MaxConcurrency of them in flight and returns one
// slot per task, in input order. A nil slot means the task failed or timed out and
// the batch continued because an ErrorHandler was set.
//
// Semantics:
//   - Empty tasks returns an empty, non-nil slice immediately.
//   - Without WithErrorHandler, the first failure is returned as soon as it happens
//     (results are nil). Workers that are still running are not waited for.
//   - With WithErrorHandler, every failure is reported to the handler and Execute
//     returns after all tasks have settled.
//   - If ctx is done before all tasks have settled, no further tasks are claimed.
//     With WithErrorHandler, the unclaimed slots stay nil and ctx.Err() is returned
//     alongside the results; tasks cancelled mid-flight reach the handler as
//     ErrTaskCancelled. Without a handler, a task cancelled mid-flight is a failure
//     like any other: results are nil and the error wraps ErrTaskCancelled.
func Execute[R any](ctx context.Context, tasks []Task[R], opts ...Option) ([]*R, error) {
	results, err := ExecuteResults[R](ctx, tasks, opts...)
	if results == nil {
		return nil, err
	}

	out := make([]*R, len(results))
	for i := range results {
		out[i] = results[i].ptr()
	}
	return out, err
}

// ExecuteResults is Execute returning the full outcome of every slot, including the
// error of failed tasks.
func ExecuteResults[R any](ctx context.Context, tasks []Task[R], opts ...Option) ([]Result[R], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err = validateTasks(tasks); err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		return []Result[R]{}, nil
	}

	return newExecution[R](cfg, tasks).run(ctx)
}

// execution is the state shared by the workers of a single Execute call.
type execution[R any] struct {
	cfg     *config
	tasks   []Task[R]
	results []Result[R]
	inst    instruments

	// cursor is the next unclaimed index.
	cursor atomic.Int64

	failOnce sync.Once
	failed   chan struct{}
	failErr  error
}

func newExecution[R any](cfg *config, tasks []Task[R]) *execution[R] {
	return &execution[R]{
		cfg:     cfg,
		tasks:   tasks,
		results: make([]Result[R], len(tasks)),
		inst:    newInstruments(cfg.Metrics),
		failed:  make(chan struct{}),
	}
}

// claim hands out each index exactly once.
func (ex *execution[R]) claim() (int, bool) {
	idx := ex.cursor.Add(1) - 1
	if idx >= int64(len(ex.tasks)) {
		return 0, false
	}
	return int(idx), true
}

// fail records the first unhandled failure and reports whether err was it.
func (ex *execution[R]) fail(err error) bool {
	first := false
	ex.failOnce.Do(func() {
		ex.failErr = err
		close(ex.failed)
		first = true
	})
	return first
}

func (ex *execution[R]) workers() int {
	return min(ex.cfg.MaxConcurrency, len(ex.tasks))
}

func (ex *execution[R]) run(ctx context.Context) ([]Result[R], error) {
	g := &errgroup.Group{}
	workCtx := ctx
	if ex.cfg.CancelOnError && ex.cfg.OnError == nil {
		g, workCtx = errgroup.WithContext(ctx)
	}

	for i := 0; i < ex.workers(); i++ {
		w := newWorker[R](i, ex)
		g.Go(func() error { return w.run(workCtx) })
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- g.Wait() }()

	select {
	case <-ex.failed:
		return nil, ex.failErr
	case err := <-waitErr:
		if err != nil {
			// fail happens before the worker returns, so failErr is set.
			return nil, ex.failErr
		}
	}

	if err := ctx.Err(); err != nil {
		return ex.results, err
	}
	return ex.results, nil
}
