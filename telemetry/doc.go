// Package telemetry parses the JSON payloads Tasmota devices publish
// into state changes.
//
// Devices report through several message shapes that carry overlapping
// content: periodic tele STATE and tele SENSOR messages, stat RESULT
// echoes after commands, bare stat POWER notifications, and the
// StatusSTS/StatusSNS wrappers of Status replies. The parsers here
// normalise all of them into []state.Change.
//
// Parsing is tolerant: a field with an out-of-range or malformed value
// is skipped rather than failing the whole message, since firmware
// versions differ in what they report. Only structurally invalid JSON
// produces an error.
package telemetry
