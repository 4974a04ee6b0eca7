package protocol

import "errors"

// Transport errors shared by the HTTP and MQTT implementations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTimeout is returned when no reply arrives within the window.
	ErrTimeout = errors.New("protocol: request timed out")

	// ErrAuthFailed is returned when the device rejects the credentials.
	ErrAuthFailed = errors.New("protocol: authentication failed")

	// ErrRequestFailed is returned when the transport-level exchange
	// fails (HTTP error status, publish failure).
	ErrRequestFailed = errors.New("protocol: request failed")

	// ErrConnectionClosed is returned when the transport is torn down
	// while a reply is still pending.
	ErrConnectionClosed = errors.New("protocol: connection closed")

	// ErrPartialAggregate is returned when an aggregated reply window
	// closed with some but not all expected fragments. The response
	// carrying the merged fragments is returned alongside this error.
	ErrPartialAggregate = errors.New("protocol: partial aggregated response")

	// ErrInvalidAddress is returned for a device address that cannot
	// be parsed.
	ErrInvalidAddress = errors.New("protocol: invalid device address")
)
