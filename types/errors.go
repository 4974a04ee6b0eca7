package types

import (
	"errors"
	"fmt"
)

// Domain-specific errors for value construction.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrOutOfRange is returned (wrapped in *RangeError) when a numeric
	// value falls outside the range the device accepts.
	ErrOutOfRange = errors.New("types: value out of range")

	// ErrInvalidPowerState is returned when a power state string cannot
	// be parsed.
	ErrInvalidPowerState = errors.New("types: invalid power state")
)

// RangeError describes a value that falls outside its permitted range.
//
// It wraps ErrOutOfRange so callers can test with errors.Is while still
// having access to the field name and bounds for diagnostics.
type RangeError struct {
	// Field is the name of the value being constructed (e.g. "dimmer").
	Field string

	// Min and Max are the inclusive bounds the device accepts.
	Min, Max int

	// Value is the offending input.
	Value int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("types: %s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// Unwrap makes errors.Is(err, ErrOutOfRange) succeed.
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// rangeErr is a shorthand constructor used by the value types.
func rangeErr(field string, value, minVal, maxVal int) error {
	return &RangeError{Field: field, Min: minVal, Max: maxVal, Value: value}
}
