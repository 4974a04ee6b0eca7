package broker

import "errors"

// Domain-specific errors for broker operations.
// Use errors.Is() to check for these errors in calling code.
// Reply collection failures use the shared sentinels in package protocol
// (ErrTimeout, ErrPartialAggregate, ErrConnectionClosed).
var (
	// ErrNotConnected is returned when attempting operations on a
	// disconnected broker.
	ErrNotConnected = errors.New("broker: not connected")

	// ErrConnectionFailed is returned when the initial connection
	// attempt fails.
	ErrConnectionFailed = errors.New("broker: connection failed")

	// ErrPublishFailed is returned when publishing a command fails.
	ErrPublishFailed = errors.New("broker: publish failed")

	// ErrSubscribeFailed is returned when a subscribe operation fails.
	ErrSubscribeFailed = errors.New("broker: subscribe failed")

	// ErrUnsubscribeFailed is returned when an unsubscribe operation fails.
	ErrUnsubscribeFailed = errors.New("broker: unsubscribe failed")

	// ErrInvalidTopic is returned for an empty device topic or one
	// containing separators or wildcards.
	ErrInvalidTopic = errors.New("broker: invalid device topic")

	// ErrAlreadyAttached is returned when attaching a device topic that
	// already has a session.
	ErrAlreadyAttached = errors.New("broker: device already attached")

	// ErrSessionClosed is returned when sending through a detached session.
	ErrSessionClosed = errors.New("broker: session closed")

	// ErrDiscoveryActive is returned when a discovery round is already
	// running.
	ErrDiscoveryActive = errors.New("broker: discovery already running")
)
