package worker

import "errors"

// ErrTaskPanic wraps a panic recovered from a ranking task.
var ErrTaskPanic = errors.New("worker task panicked")
