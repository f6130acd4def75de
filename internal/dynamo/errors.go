package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for problem construction and propagation.
var (
	// ErrInvalidParameter indicates a parameter value outside its valid range
	// (non-positive period, non-positive step size, empty time span).
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrPrecondition indicates an operation was invoked on a value that does
	// not satisfy its precondition, e.g. analytic helpers on a set-valued
	// initial condition.
	ErrPrecondition = errors.New("dynamo: precondition violated")

	// ErrDimensionMismatch indicates mismatched state/set/matrix dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrInvalidState indicates a state vector holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrCanceled indicates a propagation was interrupted by its context.
	ErrCanceled = errors.New("dynamo: propagation canceled by context")
)

// StepError wraps an error with the propagation step it occurred at.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
