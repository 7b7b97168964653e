package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for history integration and particle stepping.
var (
	// ErrInvalidOrder indicates a quadrature order other than 1, 2 or 3.
	ErrInvalidOrder = errors.New("dynamo: order must be 1, 2 or 3")

	// ErrInvalidLength indicates a history too short for the requested operation.
	ErrInvalidLength = errors.New("dynamo: invalid history length")

	// ErrNonUniformGrid indicates history times that are not equally spaced.
	ErrNonUniformGrid = errors.New("dynamo: time grid is not uniformly spaced")

	// ErrOutOfDomain indicates the flow field cannot answer at the requested point.
	ErrOutOfDomain = errors.New("dynamo: point outside flow domain")

	// ErrNumericOverflow indicates a weight or force evaluated to NaN or Inf.
	ErrNumericOverflow = errors.New("dynamo: non-finite value (NaN or Inf detected)")

	// ErrTimeOrder indicates a state appended out of time order.
	ErrTimeOrder = errors.New("dynamo: state time does not advance")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrTerminated indicates an advance was requested after the run finished.
	ErrTerminated = errors.New("dynamo: stepper terminated")

	// ErrFailed indicates an advance was requested after a step failed.
	ErrFailed = errors.New("dynamo: stepper failed")
)

// StepError wraps an error with the step that produced it.
type StepError struct {
	Step    int
	Time    float64
	State   ParticleState
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
