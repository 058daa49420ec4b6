package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a schedule or stop condition out of range.
	ErrInvalidConfig = errors.New("driver: invalid config")

	// ErrInvalidGene indicates a gene that broke its limits after a step.
	ErrInvalidGene = errors.New("driver: gene violates limits")
)

// StepError wraps a failed step with its generation and temperature.
type StepError struct {
	Generation  int
	Temperature float64
	Wrapped     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("generation %d (T=%.4f): %v", e.Generation, e.Temperature, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
