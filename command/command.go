package command

import (
	"fmt"
	"time"
)

// Command is a single instruction for a Tasmota device.
//
// Implementations are immutable value types; constructing one from the
// validated types in package types guarantees the payload is within the
// range the device accepts.
type Command interface {
	// Name returns the Tasmota command name including any relay index
	// suffix (e.g. "Power1", "Dimmer", "Status").
	Name() string

	// Payload returns the command argument and whether one is present.
	// A command without a payload is a query for the current value.
	Payload() (string, bool)
}

// RequestString renders cmd in the single-line form used by the HTTP
// transport and by Backlog steps: "Name" or "Name Payload".
func RequestString(cmd Command) string {
	if payload, ok := cmd.Payload(); ok {
		return cmd.Name() + " " + payload
	}
	return cmd.Name()
}

// PublishPayload returns the MQTT message body for cmd. Commands without
// a payload publish an empty body, which Tasmota treats as a query.
func PublishPayload(cmd Command) string {
	payload, _ := cmd.Payload()
	return payload
}

// TopicSuffix returns the final level of the cmnd topic for cmd.
func TopicSuffix(cmd Command) string {
	return cmd.Name()
}

// ResponseMode distinguishes single-message replies from multi-fragment ones.
type ResponseMode int

const (
	// ResponseSingle means the device answers with exactly one stat message.
	ResponseSingle ResponseMode = iota

	// ResponseAggregated means the device answers with several stat
	// fragments that must be collected and merged.
	ResponseAggregated
)

// ResponseSpec tells the transport how to collect the reply to a command.
type ResponseSpec struct {
	Mode ResponseMode

	// Expected lists the stat topic suffixes of the fragments an
	// aggregated reply consists of (e.g. "STATUS", "STATUS1").
	// Empty for single replies.
	Expected []string

	// Timeout bounds the collection window for aggregated replies.
	// Zero for single replies; the transport applies its own per-request
	// timeout there.
	Timeout time.Duration
}

// aggregatedResponder is implemented by commands whose reply spans
// multiple stat fragments. Commands without it get a single-reply spec.
type aggregatedResponder interface {
	responseSpec() ResponseSpec
}

// SpecFor returns the ResponseSpec for cmd. Commands that do not declare
// an aggregated reply default to a single-message spec.
func SpecFor(cmd Command) ResponseSpec {
	if agg, ok := cmd.(aggregatedResponder); ok {
		return agg.responseSpec()
	}
	return ResponseSpec{Mode: ResponseSingle}
}

// basic is the common Command implementation used by the constructors in
// this package.
type basic struct {
	name       string
	payload    string
	hasPayload bool
}

func (b basic) Name() string { return b.name }

func (b basic) Payload() (string, bool) { return b.payload, b.hasPayload }

func (b basic) String() string { return RequestString(b) }

// query builds a payload-less command.
func query(name string) basic {
	return basic{name: name}
}

// set builds a command carrying a payload.
func set(name, payload string) basic {
	return basic{name: name, payload: payload, hasPayload: true}
}

// Aggregated builds a command whose reply spans multiple stat
// fragments. expected lists the fragment topic suffixes; window bounds
// the collection. Most callers want StatusAll instead; this exists for
// custom commands whose replies fan out the same way.
func Aggregated(name, payload string, expected []string, window time.Duration) Command {
	return aggregated{
		basic: basic{name: name, payload: payload, hasPayload: payload != ""},
		spec: ResponseSpec{
			Mode:     ResponseAggregated,
			Expected: expected,
			Timeout:  window,
		},
	}
}

type aggregated struct {
	basic
	spec ResponseSpec
}

func (a aggregated) responseSpec() ResponseSpec { return a.spec }

// Raw builds a command from a literal name and payload, bypassing the
// typed constructors. Validation is the caller's responsibility; prefer
// the typed constructors where one exists.
func Raw(name, payload string) Command {
	if payload == "" {
		return query(name)
	}
	return set(name, payload)
}

// RawLine builds a command from a single-line request string of the form
// "Name" or "Name Payload", the inverse of RequestString.
func RawLine(line string) (Command, error) {
	name, payload, ok := splitRequestLine(line)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEmptyCommand, line)
	}
	if payload == "" {
		return query(name), nil
	}
	return set(name, payload), nil
}

func splitRequestLine(line string) (name, payload string, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			return line[:i], line[i+1:], i > 0
		}
	}
	return line, "", line != ""
}
