package batch

// Result is the outcome recorded in a single result slot.
// The zero value is the empty slot: the task failed, timed out or was never started.
type Result[R any] struct {
	// Value holds the task result when OK reports true.
	Value R
	// Err holds the *IndexedError when the task was started and failed.
	Err error

	ok bool
}

// OK reports whether the task finished successfully.
func (r Result[R]) OK() bool { return r.ok }

// Get returns the value and whether it is present.
func (r Result[R]) Get() (R, bool) { return r.Value, r.ok }

// ptr returns a pointer to a copy of the value, or nil for an empty slot.
func (r Result[R]) ptr() *R {
	if !r.ok {
		return nil
	}
	v := r.Value
	return &v
}

func success[R any](v R) Result[R] { return Result[R]{Value: v, ok: true} }

func failure[R any](err error) Result[R] { return Result[R]{Err: err} }

// Values returns the values of successful slots in input order, skipping empty ones.
func Values[R any](results []Result[R]) []R {
	out := make([]R, 0, len(results))
	for _, r := range results {
		if r.ok {
			out = append(out, r.Value)
		}
	}
	return out
}
