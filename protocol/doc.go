// Package protocol defines the transport contract for talking to a
// device and provides the HTTP implementation.
//
// A Protocol sends one command and returns one CommandResponse; it is
// the seam between the typed command layer and the wire. Two transports
// implement it: the HTTP client in this package (stateless, one request
// per command) and the MQTT session in package broker (persistent,
// correlated over stat topics).
//
// Failure vocabulary is shared across transports: ErrTimeout,
// ErrAuthFailed, ErrRequestFailed, ErrConnectionClosed and
// ErrPartialAggregate are the errors callers branch on, always checked
// with errors.Is.
package protocol
