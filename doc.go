// Package batch executes a fixed list of independent tasks with bounded concurrency.
//
// Execution model
//   - A batch is a []Task[R]. Execute spawns min(MaxConcurrency, len(tasks)) workers.
//   - Workers pull the next unclaimed index from a shared cursor, so a slow task only
//     occupies one worker while the others keep draining the list.
//   - Results are positional: slot i always belongs to tasks[i], regardless of completion order.
//
// Defaults
// Unless overridden, the following defaults apply:
//   - MaxConcurrency: 5
//   - Timeout: 0 (tasks run to natural completion)
//   - ErrorHandler: nil (fail-fast)
//   - CancelOnError: false
//   - Logger: zap.NewNop()
//   - Metrics: metrics.NoopProvider
//
// Failure handling
//   - With an ErrorHandler, every failure (including timeouts and panics) is reported to
//     the handler together with the task index, the slot is left empty and the batch continues.
//   - Without an ErrorHandler, the first failure is returned from Execute as soon as it happens.
//     Other workers are not stopped unless WithCancelOnError is set.
//
// Timeouts
// WithTimeout bounds how long a worker waits for a single task. When it expires the
// worker records a *TimeoutError and moves on; the task's context is cancelled, but a
// task that ignores its context keeps running in the background and its result is dropped.
package batch
