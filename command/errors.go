package command

import "errors"

// Domain-specific errors for command construction.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrEmptyCommand is returned when a raw command line has no name.
	ErrEmptyCommand = errors.New("command: empty command")

	// ErrRoutineEmpty is returned when building a routine with no steps.
	ErrRoutineEmpty = errors.New("command: routine has no steps")

	// ErrRoutineTooLong is returned when a routine exceeds the 30-step
	// limit of Tasmota's Backlog command.
	ErrRoutineTooLong = errors.New("command: routine exceeds 30 steps")

	// ErrInvalidStatusType is returned for a status type outside 0-13.
	ErrInvalidStatusType = errors.New("command: invalid status type")
)
