package batch

import (
	"context"
	"errors"
)

// ForEach applies fn to each item with the batch executor.
// Without WithErrorHandler it fails fast and returns the first failure. With a handler,
// the handler still sees every failure and ForEach returns their errors.Join in index order.
func ForEach[T any](ctx context.Context, items []T, fn func(context.Context, T) error, opts ...Option) error {
	if len(items) == 0 {
		return nil
	}

	cfg, err := newConfig(opts...)
	if err != nil {
		return err
	}

	tasks := make([]Task[struct{}], 0, len(items))
	for i := range items {
		item := items[i] // capture
		tasks = append(tasks, TaskError[struct{}](func(c context.Context) error { return fn(c, item) }))
	}

	results, err := ExecuteResults[struct{}](ctx, tasks, opts...)
	if cfg.OnError == nil || results == nil {
		return err
	}

	errs := make([]error, 0, len(results)+1)
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
