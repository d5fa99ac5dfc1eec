package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for secular integrations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrMaxAttempts indicates the stepper rejected the same step too often.
	ErrMaxAttempts = errors.New("dynamo: max iteration number reached")

	// ErrStepTooSmall indicates the adaptive step underflowed.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrDimensionMismatch indicates a state whose length does not match its layout.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and layout")
)

// SimulationError wraps an error with integration context.
type SimulationError struct {
	Task    int
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("task %d step %d (t=%.6g): %v", e.Task, e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
