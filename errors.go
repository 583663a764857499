package batch

import "errors"

const Namespace = "batch"

var (
	ErrTaskTimeout   = errors.New(Namespace + ": task execution timed out")
	ErrTaskCancelled = errors.New(Namespace + ": task execution cancelled")
	ErrTaskPanicked  = errors.New(Namespace + ": task execution panicked")
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
	ErrInvalidTask   = errors.New(Namespace + ": invalid task")
)
