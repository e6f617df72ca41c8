package ocean

import (
	"errors"
	"fmt"
)

// Domain errors for framework operations.
var (
	// ErrNotConfigured indicates fields were requested before the grid size was set.
	ErrNotConfigured = errors.New("ocean: grid dimensions not configured")

	// ErrInvalidSettings indicates settings that cannot describe a grid or a run.
	ErrInvalidSettings = errors.New("ocean: invalid settings")

	// ErrShapeMismatch indicates a write or read outside a field's declared shape.
	ErrShapeMismatch = errors.New("ocean: shape mismatch")

	// ErrUnknownDimension indicates an allocation with an unregistered dimension name.
	ErrUnknownDimension = errors.New("ocean: unknown dimension")

	// ErrUnknownVariable indicates a diagnostic output variable the state does not hold.
	ErrUnknownVariable = errors.New("ocean: unknown variable")

	// ErrUnknownDiagnostic indicates a lookup of an unregistered diagnostic.
	ErrUnknownDiagnostic = errors.New("ocean: unknown diagnostic")

	// ErrEmptyReduction indicates a global reduction over no values.
	ErrEmptyReduction = errors.New("ocean: reduction over empty array")

	// ErrUnstable indicates a prognostic field became NaN or Inf.
	ErrUnstable = errors.New("ocean: simulation unstable (non-finite tracer)")

	// ErrNotSetup indicates Run was called before Setup.
	ErrNotSetup = errors.New("ocean: runner not set up")
)

// StepError wraps an error with time-step context.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.0fs): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
