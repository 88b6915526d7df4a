package magnet

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrParameterBounds indicates a physical parameter outside its
	// valid range.
	ErrParameterBounds = errors.New("magnet: parameter out of valid bounds")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("magnet: invalid state (NaN or Inf detected)")

	// ErrNoConvergence indicates a nonlinear solve failed to converge.
	ErrNoConvergence = errors.New("magnet: nonlinear solve did not converge")

	// ErrEchoMismatch indicates the echo-time sample of a pulse train
	// did not land on the requested echo time.
	ErrEchoMismatch = errors.New("magnet: echo time inconsistent with pulse timing")
)

// SimulationError wraps an error with pulse-train context.
type SimulationError struct {
	Pulse   int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("pulse %d (t=%.6g): %v", e.Pulse, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
