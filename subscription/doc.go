// Package subscription dispatches device events to registered callbacks.
//
// A Registry holds typed callbacks (power, dimmer, colour, energy,
// connectivity) plus a catch-all state-change hook. Registration returns
// an opaque ID used to unsubscribe. The registry snapshots the callback
// set before invoking it, so a callback may unsubscribe itself (or
// register new callbacks) without deadlocking.
//
// Callbacks run synchronously on the dispatching goroutine, which for
// MQTT devices is the message router. Long-running work belongs in the
// callback's own goroutine.
package subscription
