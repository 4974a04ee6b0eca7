package state

import (
	"fmt"

	"github.com/tasgo-io/tasgo/types"
)

// ChangeKind identifies which aspect of the device a Change affects.
type ChangeKind int

const (
	KindPower ChangeKind = iota
	KindDimmer
	KindColor
	KindColorTemp
	KindScheme
	KindFade
	KindFadeSpeed
	KindEnergy
	KindUptime
	KindWifi
)

// String returns a short name for logging.
func (k ChangeKind) String() string {
	switch k {
	case KindPower:
		return "power"
	case KindDimmer:
		return "dimmer"
	case KindColor:
		return "color"
	case KindColorTemp:
		return "color_temp"
	case KindScheme:
		return "scheme"
	case KindFade:
		return "fade"
	case KindFadeSpeed:
		return "fade_speed"
	case KindEnergy:
		return "energy"
	case KindUptime:
		return "uptime"
	case KindWifi:
		return "wifi"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Change is one observed delta from a device report. Only the fields
// relevant to Kind are set; use the constructors below.
type Change struct {
	Kind ChangeKind

	Relay types.PowerIndex // KindPower
	Power types.PowerState // KindPower

	Dimmer    types.Dimmer    // KindDimmer
	Color     types.HsbColor  // KindColor
	ColorTemp types.ColorTemp // KindColorTemp
	Scheme    types.Scheme    // KindScheme
	Fade      bool            // KindFade
	FadeSpeed types.FadeSpeed // KindFadeSpeed

	Energy    EnergyReading // KindEnergy
	UptimeSec int64         // KindUptime
	Wifi      WifiStatus    // KindWifi
}

// PowerChange records a relay switching to state.
func PowerChange(relay types.PowerIndex, power types.PowerState) Change {
	return Change{Kind: KindPower, Relay: relay, Power: power}
}

// DimmerChange records a new brightness level.
func DimmerChange(level types.Dimmer) Change {
	return Change{Kind: KindDimmer, Dimmer: level}
}

// ColorChange records a new HSB colour.
func ColorChange(color types.HsbColor) Change {
	return Change{Kind: KindColor, Color: color}
}

// ColorTempChange records a new white colour temperature.
func ColorTempChange(ct types.ColorTemp) Change {
	return Change{Kind: KindColorTemp, ColorTemp: ct}
}

// SchemeChange records a new light scheme.
func SchemeChange(scheme types.Scheme) Change {
	return Change{Kind: KindScheme, Scheme: scheme}
}

// FadeChange records fading being enabled or disabled.
func FadeChange(enabled bool) Change {
	return Change{Kind: KindFade, Fade: enabled}
}

// FadeSpeedChange records a new fade speed.
func FadeSpeedChange(speed types.FadeSpeed) Change {
	return Change{Kind: KindFadeSpeed, FadeSpeed: speed}
}

// EnergyChange records a fresh energy reading.
func EnergyChange(reading EnergyReading) Change {
	return Change{Kind: KindEnergy, Energy: reading}
}

// UptimeChange records the device's uptime in seconds.
func UptimeChange(seconds int64) Change {
	return Change{Kind: KindUptime, UptimeSec: seconds}
}

// WifiChange records the device's Wi-Fi link status.
func WifiChange(wifi WifiStatus) Change {
	return Change{Kind: KindWifi, Wifi: wifi}
}

// Apply folds a change into the state.
//
// Returns:
//   - bool: true if the state moved, false if the change matched the
//     value already held (applying the same change twice is a no-op)
func (s *DeviceState) Apply(c Change) bool {
	switch c.Kind {
	case KindPower:
		slot, ok := relaySlot(c.Relay)
		if !ok {
			return false
		}
		if s.Power[slot] != nil && *s.Power[slot] == c.Power {
			return false
		}
		v := c.Power
		s.Power[slot] = &v
		return true

	case KindDimmer:
		return applyField(&s.Dimmer, c.Dimmer)
	case KindColor:
		return applyField(&s.Color, c.Color)
	case KindColorTemp:
		return applyField(&s.ColorTemp, c.ColorTemp)
	case KindScheme:
		return applyField(&s.Scheme, c.Scheme)
	case KindFade:
		return applyField(&s.Fade, c.Fade)
	case KindFadeSpeed:
		return applyField(&s.FadeSpeed, c.FadeSpeed)
	case KindEnergy:
		return applyField(&s.Energy, c.Energy)
	case KindUptime:
		return applyField(&s.UptimeSec, c.UptimeSec)
	case KindWifi:
		return applyField(&s.Wifi, c.Wifi)
	default:
		return false
	}
}

// ApplyAll folds a batch of changes and returns those that moved the state.
func (s *DeviceState) ApplyAll(changes []Change) []Change {
	var applied []Change
	for _, c := range changes {
		if s.Apply(c) {
			applied = append(applied, c)
		}
	}
	return applied
}

func applyField[T comparable](field **T, value T) bool {
	if *field != nil && **field == value {
		return false
	}
	v := value
	*field = &v
	return true
}
