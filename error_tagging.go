package batch

import (
	"errors"
	"fmt"
	"time"
)

// IndexedError tags a task failure with the index of the task in the input slice.
// Every error handed to an ErrorHandler or returned by Execute for a task failure is an *IndexedError.
type IndexedError struct {
	Index int
	Err   error
}

func newIndexedError(err error, index int) error {
	if err == nil {
		return nil
	}
	return &IndexedError{Index: index, Err: err}
}

func (e *IndexedError) Error() string { return fmt.Sprintf("task %d: %v", e.Index, e.Err) }
func (e *IndexedError) Unwrap() error { return e.Err }

// TaskIndex returns the index of the failed task.
func (e *IndexedError) TaskIndex() (int, bool) { return e.Index, true }

// TimeoutError reports a task that did not settle before the configured timeout.
// It matches ErrTaskTimeout with errors.Is.
type TimeoutError struct {
	Index   int
	Timeout time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v after %s", ErrTaskTimeout, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrTaskTimeout }

// ExtractTaskIndex returns the task index from err if present.
func ExtractTaskIndex(err error) (int, bool) {
	var te *IndexedError
	if errors.As(err, &te) {
		return te.TaskIndex()
	}
	return 0, false
}

// IsTimeout reports whether err is, or wraps, a task timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTaskTimeout) }
