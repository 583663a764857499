package batch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// worker repeatedly claims the next index from the shared cursor and runs that task.
type worker[R any] struct {
	id int
	ex *execution[R]
}

func newWorker[R any](id int, ex *execution[R]) *worker[R] {
	return &worker[R]{id: id, ex: ex}
}

// run loops until the cursor is exhausted, ctx is done, or a task fails without a handler.
// The returned error is that unhandled failure.
func (w *worker[R]) run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		idx, ok := w.ex.claim()
		if !ok {
			return nil
		}
		if err := w.execute(ctx, idx); err != nil {
			return err
		}
	}
}

// execute runs tasks[idx] and writes its slot. Only the worker that claimed idx writes it.
func (w *worker[R]) execute(ctx context.Context, idx int) error {
	ex := w.ex
	ex.inst.started.Add(1)
	ex.inst.inflight.Add(1)
	start := time.Now()

	val, err := runTask[R](ctx, idx, ex.cfg.Timeout, ex.tasks[idx])

	ex.inst.inflight.Add(-1)
	ex.inst.duration.Record(time.Since(start).Seconds())
	ex.inst.completed.Add(1)

	if err == nil {
		ex.results[idx] = success(val)
		return nil
	}

	ex.inst.failed.Add(1)
	if IsTimeout(err) {
		ex.inst.timedOut.Add(1)
	}
	ex.results[idx] = failure[R](err)

	log := ex.cfg.Logger.With(zap.Int("worker", w.id), zap.Int("index", idx))
	if ex.cfg.OnError != nil {
		log.Debug("task failed", zap.Error(err), zap.Bool("timeout", IsTimeout(err)))
		ex.cfg.OnError(err, idx)
		return nil
	}

	if ex.fail(err) {
		log.Warn("batch aborted by task failure", zap.Error(err))
	} else {
		log.Debug("task failed after batch abort", zap.Error(err))
	}
	return err
}
