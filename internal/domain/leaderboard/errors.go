package leaderboard

import (
	"errors"
	"fmt"
)

// ErrComputation is the kind of every failure raised while computing a
// leaderboard. Match it with errors.Is.
var ErrComputation = errors.New("leaderboard computation failed")

// ComputationError wraps the cause of a failed computation step.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("leaderboard.%s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// Is makes every ComputationError match ErrComputation.
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}

func fail(op string, err error) error {
	return &ComputationError{Op: op, Err: err}
}

func failf(op, format string, args ...any) error {
	return fail(op, fmt.Errorf(format, args...))
}
