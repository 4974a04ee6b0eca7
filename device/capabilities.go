package device

import (
	"strings"

	"github.com/tasgo-io/tasgo/state"
	"github.com/tasgo-io/tasgo/telemetry"
	"github.com/tasgo-io/tasgo/types"
)

// Capabilities describes what a device's hardware and firmware support.
// The zero value supports nothing; start from a preset or use the
// With* builders.
type Capabilities struct {
	// Relays is the number of switchable outputs (0-8).
	Relays int

	// Dimming covers brightness, fading and wakeup ramps.
	Dimming bool

	// ColorTemp covers tunable-white channels (CT command).
	ColorTemp bool

	// Color covers RGB channels (HSBColor command and schemes).
	Color bool

	// Energy covers power metering (ENERGY telemetry, EnergyReset).
	Energy bool
}

// Presets matching common device classes.

// BasicRelay is a single-relay switch or plug.
func BasicRelay() Capabilities {
	return Capabilities{Relays: 1}
}

// MultiRelay is an n-gang switch.
func MultiRelay(relays int) Capabilities {
	if relays < 1 {
		relays = 1
	}
	if relays > state.MaxRelays {
		relays = state.MaxRelays
	}
	return Capabilities{Relays: relays}
}

// DimmableLight is a single-channel dimmer.
func DimmableLight() Capabilities {
	return Capabilities{Relays: 1, Dimming: true}
}

// CCTLight is a tunable-white light.
func CCTLight() Capabilities {
	return Capabilities{Relays: 1, Dimming: true, ColorTemp: true}
}

// RGBCCTLight is a full colour light with tunable white.
func RGBCCTLight() Capabilities {
	return Capabilities{Relays: 1, Dimming: true, ColorTemp: true, Color: true}
}

// EnergyMonitor is a switching plug with power metering.
func EnergyMonitor() Capabilities {
	return Capabilities{Relays: 1, Energy: true}
}

// Builder-style extension of a preset.

// WithRelays returns a copy with the relay count set.
func (c Capabilities) WithRelays(relays int) Capabilities {
	c.Relays = relays
	return c
}

// WithDimming returns a copy with dimming enabled.
func (c Capabilities) WithDimming() Capabilities {
	c.Dimming = true
	return c
}

// WithColorTemp returns a copy with tunable white enabled.
func (c Capabilities) WithColorTemp() Capabilities {
	c.ColorTemp = true
	return c
}

// WithColor returns a copy with RGB colour enabled.
func (c Capabilities) WithColor() Capabilities {
	c.Color = true
	return c
}

// WithEnergy returns a copy with energy monitoring enabled.
func (c Capabilities) WithEnergy() Capabilities {
	c.Energy = true
	return c
}

// HasRelay reports whether the device has the relay at idx. The
// broadcast index is valid whenever at least one relay exists.
func (c Capabilities) HasRelay(idx types.PowerIndex) bool {
	if idx.IsAll() {
		return c.Relays >= 1
	}
	return int(idx) <= c.Relays
}

// FromPresetName maps a configuration string to a preset. Unknown names
// fall back to a basic relay, keeping config tolerant of typos at the
// cost of stricter gating.
func FromPresetName(name string, relays int) Capabilities {
	var caps Capabilities
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dimmer":
		caps = DimmableLight()
	case "cct":
		caps = CCTLight()
	case "rgbcct", "rgb":
		caps = RGBCCTLight()
	case "energy":
		caps = EnergyMonitor()
	default:
		caps = BasicRelay()
	}
	if relays > 0 {
		caps = caps.WithRelays(relays)
	}
	return caps
}

// Detect infers capabilities from a device's state and sensor replies
// (typically Status 11 and Status 8, or their tele equivalents). Fields
// the device reports imply the capability behind them.
func Detect(statePayload, sensorPayload []byte) Capabilities {
	caps := Capabilities{Relays: 1}

	if changes, err := telemetry.ParseState(statePayload); err == nil {
		for _, c := range changes {
			switch c.Kind {
			case state.KindPower:
				if n := int(c.Relay); n > caps.Relays {
					caps.Relays = n
				}
			case state.KindDimmer:
				caps.Dimming = true
			case state.KindColorTemp:
				caps.ColorTemp = true
			case state.KindColor:
				caps.Color = true
			}
		}
	}

	if len(sensorPayload) > 0 {
		if changes, err := telemetry.ParseSensor(sensorPayload); err == nil && len(changes) > 0 {
			caps.Energy = true
		}
	}

	return caps
}
