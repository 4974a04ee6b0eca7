// Package state holds the incrementally aggregated view of a device.
//
// A DeviceState starts empty and is folded forward by applying Change
// values produced by the telemetry parsers. Every field is optional:
// nil means the device has not reported that value yet. Applying a
// change is idempotent and reports whether anything actually moved,
// which lets callers suppress no-op notifications.
//
// DeviceState is not safe for concurrent use on its own; the owning
// device serialises access and hands out independent copies via Snapshot.
package state
