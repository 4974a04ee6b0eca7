package types

import (
	"fmt"
	"strings"
)

// PowerState represents the state of a relay output.
//
// The numeric values match the payloads Tasmota accepts for Power
// commands (0=off, 1=on, 2=toggle, 3=blink, 4=blink off).
type PowerState uint8

// Power states accepted by Tasmota relays.
const (
	PowerOff PowerState = iota
	PowerOn
	PowerToggle
	PowerBlink
	PowerBlinkOff
)

// String returns the wire form used in command payloads and reported
// in device responses ("OFF", "ON", "TOGGLE", "BLINK", "BLINKOFF").
func (p PowerState) String() string {
	switch p {
	case PowerOff:
		return "OFF"
	case PowerOn:
		return "ON"
	case PowerToggle:
		return "TOGGLE"
	case PowerBlink:
		return "BLINK"
	case PowerBlinkOff:
		return "BLINKOFF"
	default:
		return fmt.Sprintf("POWER(%d)", uint8(p))
	}
}

// IsOn reports whether the state is PowerOn.
func (p PowerState) IsOn() bool {
	return p == PowerOn
}

// ParsePowerState converts a device-reported power value to a PowerState.
//
// Devices report "ON"/"OFF" in stat messages, but command payloads also
// accept digits and true/false, so all spellings are recognised. Matching
// is case-insensitive.
//
// Returns:
//   - PowerState: The parsed state
//   - error: ErrInvalidPowerState (wrapped) if the input is not recognised
func ParsePowerState(s string) (PowerState, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ON", "1", "TRUE":
		return PowerOn, nil
	case "OFF", "0", "FALSE":
		return PowerOff, nil
	case "TOGGLE", "2":
		return PowerToggle, nil
	case "BLINK", "3":
		return PowerBlink, nil
	case "BLINKOFF", "4":
		return PowerBlinkOff, nil
	default:
		return PowerOff, fmt.Errorf("%w: %q", ErrInvalidPowerState, s)
	}
}

// Relay index bounds. Index 0 addresses all relays at once.
const (
	MinPowerIndex = 0
	MaxPowerIndex = 8
)

// PowerIndex identifies a relay output on a multi-channel device.
//
// Index 0 is the broadcast index: the command name carries no suffix and
// the device applies it to every relay. Indices 1-8 address individual
// relays ("Power1".."Power8").
type PowerIndex uint8

// PowerIndexAll addresses all relays on the device.
const PowerIndexAll PowerIndex = 0

// NewPowerIndex validates idx against the 0-8 range Tasmota supports.
func NewPowerIndex(idx int) (PowerIndex, error) {
	if idx < MinPowerIndex || idx > MaxPowerIndex {
		return 0, rangeErr("power index", idx, MinPowerIndex, MaxPowerIndex)
	}
	return PowerIndex(idx), nil
}

// Suffix returns the command name suffix for this index: empty for the
// broadcast index, "1".."8" otherwise.
func (i PowerIndex) Suffix() string {
	if i == PowerIndexAll {
		return ""
	}
	return fmt.Sprintf("%d", uint8(i))
}

// IsAll reports whether this is the broadcast index.
func (i PowerIndex) IsAll() bool {
	return i == PowerIndexAll
}
