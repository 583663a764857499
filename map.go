package batch

import "context"

// Map applies fn to every item with the batch executor and returns one slot per item.
// Semantics:
// - Delegates to Execute after wrapping each item into a Task that calls fn(ctx, item).
// - Slot i belongs to items[i]; options like WithMaxConcurrency, WithTimeout and WithErrorHandler apply.
func Map[T, R any](
	ctx context.Context,
	items []T,
	fn func(context.Context, T) (R, error),
	opts ...Option,
) ([]*R, error) {
	tasks := make([]Task[R], 0, len(items))
	for i := range items {
		item := items[i] // capture
		tasks = append(tasks, TaskFunc[R](func(c context.Context) (R, error) { return fn(c, item) }))
	}
	return Execute[R](ctx, tasks, opts...)
}
