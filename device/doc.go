// Package device provides the typed facade for controlling a single
// Tasmota device.
//
// A Device wraps any protocol.Protocol (HTTP client or MQTT session)
// with capability-checked setters, state queries, routines and event
// subscriptions. Capability gating happens before anything touches the
// wire: asking a plain relay for a colour change fails immediately with
// ErrCapabilityUnsupported instead of sending a command the firmware
// would ignore.
//
// Over MQTT the device's state and callbacks are fed continuously by
// the broker's router. Over HTTP there is no push channel; the device
// folds each command's reply into its own state view, so state is as
// fresh as the last exchange.
package device
