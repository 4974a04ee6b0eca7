package types

import "fmt"

// Light scheme bounds.
const (
	MinScheme = 0
	MaxScheme = 4
)

// Scheme selects a built-in light animation (Tasmota Scheme command).
type Scheme uint8

// Light schemes supported by Tasmota lights.
const (
	// SchemeSingleColor holds a single colour (animation off).
	SchemeSingleColor Scheme = iota

	// SchemeWakeup performs a slow brightness ramp over the configured
	// wakeup duration.
	SchemeWakeup

	// SchemeCycleUp cycles through the colour wheel hue-ascending.
	SchemeCycleUp

	// SchemeCycleDown cycles through the colour wheel hue-descending.
	SchemeCycleDown

	// SchemeRandom jumps to random colours.
	SchemeRandom
)

// NewScheme validates scheme against the 0-4 range.
func NewScheme(scheme int) (Scheme, error) {
	if scheme < MinScheme || scheme > MaxScheme {
		return 0, rangeErr("scheme", scheme, MinScheme, MaxScheme)
	}
	return Scheme(scheme), nil
}

// String returns the wire form used in Scheme command payloads.
func (s Scheme) String() string {
	return fmt.Sprintf("%d", uint8(s))
}

// Name returns a human-readable name for the scheme.
func (s Scheme) Name() string {
	switch s {
	case SchemeSingleColor:
		return "single color"
	case SchemeWakeup:
		return "wakeup"
	case SchemeCycleUp:
		return "cycle up"
	case SchemeCycleDown:
		return "cycle down"
	case SchemeRandom:
		return "random"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(s))
	}
}
