package tracer

import (
	"errors"
	"fmt"
)

// Domain errors for tracing runs.
var (
	// ErrInvalidConfig indicates non-positive steps, step size or write frequency.
	ErrInvalidConfig = errors.New("tracer: invalid run configuration")

	// ErrNoParticles indicates an empty particle set.
	ErrNoParticles = errors.New("tracer: no particles to trace")
)

// SnapshotError wraps a sink failure with the step being written. Sink
// failures abort the run.
type SnapshotError struct {
	Step    int
	Wrapped error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("tracer: writing snapshot for step %d: %v", e.Step, e.Wrapped)
}

func (e *SnapshotError) Unwrap() error {
	return e.Wrapped
}
