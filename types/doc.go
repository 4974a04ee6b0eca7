// Package types provides the validated value types used across the library.
//
// Every constrained quantity a Tasmota device understands (power state,
// dimmer level, colour temperature, HSB colour, fade speed, light scheme,
// wakeup duration) is modelled as a dedicated type whose constructor
// enforces the device's accepted range. A value that exists is a value
// that is valid: commands built from these types cannot carry an
// out-of-range payload.
//
// Constructors return an error (typically *RangeError) for invalid input.
// Where Tasmota itself clamps rather than rejects, an explicit *Clamped
// constructor is provided; clamping never happens implicitly.
package types
