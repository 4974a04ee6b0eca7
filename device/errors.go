package device

import "errors"

// Domain-specific errors for device operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrCapabilityUnsupported is returned when an operation needs a
	// capability the device does not have.
	ErrCapabilityUnsupported = errors.New("device: capability not supported")

	// ErrNoEnergyData is returned when an energy query yields a reply
	// without an energy block.
	ErrNoEnergyData = errors.New("device: no energy data in reply")
)
