package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptySample  = fmt.Errorf("%w: empty sample", ErrInvalidInput)
	ErrNonFinite    = fmt.Errorf("%w: non-finite value", ErrInvalidInput)
	ErrInvalidAlpha = fmt.Errorf("%w: alpha must be in (0,1)", ErrInvalidInput)

	// State errors
	ErrNotComputed = errors.New("result not computed")

	// Computation errors raised by the underlying statistics routines
	ErrComputation = errors.New("statistical computation failed")
)

// NewInvalidInputError reports a malformed field.
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// NewNotComputedError reports a read of a test path that has not run.
func NewNotComputedError(path string) error {
	return fmt.Errorf("%w: %s test has not been run", ErrNotComputed, path)
}

// NewComputationError wraps a failure from a statistics routine.
func NewComputationError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrComputation, operation, err)
}

// Error checking helpers
func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsNotComputedError(err error) bool {
	return errors.Is(err, ErrNotComputed)
}

func IsComputationError(err error) bool {
	return errors.Is(err, ErrComputation)
}
