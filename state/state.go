package state

import "github.com/tasgo-io/tasgo/types"

// MaxRelays is the number of individually addressable relay outputs.
const MaxRelays = 8

// EnergyReading is a snapshot of the energy monitoring block reported
// by devices with power metering (tele SENSOR / Status 8).
type EnergyReading struct {
	// Instantaneous readings.
	Power         float64 // active power, W
	ApparentPower float64 // VA
	ReactivePower float64 // VAr
	Factor        float64 // power factor, 0-1
	Voltage       float64 // V
	Current       float64 // A

	// Accumulated energy, kWh.
	Today     float64
	Yesterday float64
	Total     float64

	// TotalStartTime is when the Total counter last started, as
	// reported by the device ("2024-03-01T00:00:00").
	TotalStartTime string
}

// WifiStatus describes the device's Wi-Fi link as reported in tele STATE.
type WifiStatus struct {
	SSID    string
	Channel int
	RSSI    int // percent, 0-100
	Signal  int // dBm, negative
}

// DeviceState is the aggregated view of everything a device has reported.
//
// Nil fields have not been observed yet. The relay array is indexed by
// relay number minus one (relay 1 at index 0).
type DeviceState struct {
	Power     [MaxRelays]*types.PowerState
	Dimmer    *types.Dimmer
	Color     *types.HsbColor
	ColorTemp *types.ColorTemp
	Scheme    *types.Scheme
	Fade      *bool
	FadeSpeed *types.FadeSpeed
	Energy    *EnergyReading
	UptimeSec *int64
	Wifi      *WifiStatus
}

// New returns an empty DeviceState.
func New() *DeviceState {
	return &DeviceState{}
}

// RelayState returns the last reported state of the relay at idx
// (1-based) and whether one has been observed. The broadcast index
// reports relay 1, matching how single-relay devices report "POWER".
// An index beyond MaxRelays reports nothing observed.
func (s *DeviceState) RelayState(idx types.PowerIndex) (types.PowerState, bool) {
	slot, ok := relaySlot(idx)
	if !ok || s.Power[slot] == nil {
		return types.PowerOff, false
	}
	return *s.Power[slot], true
}

// IsOn reports whether any relay is known to be on.
func (s *DeviceState) IsOn() bool {
	for _, p := range s.Power {
		if p != nil && p.IsOn() {
			return true
		}
	}
	return false
}

// Snapshot returns an independent copy of the state. Mutating the copy
// or applying further changes to the original affects neither.
func (s *DeviceState) Snapshot() *DeviceState {
	out := &DeviceState{}
	for i, p := range s.Power {
		out.Power[i] = copyPtr(p)
	}
	out.Dimmer = copyPtr(s.Dimmer)
	out.Color = copyPtr(s.Color)
	out.ColorTemp = copyPtr(s.ColorTemp)
	out.Scheme = copyPtr(s.Scheme)
	out.Fade = copyPtr(s.Fade)
	out.FadeSpeed = copyPtr(s.FadeSpeed)
	out.Energy = copyPtr(s.Energy)
	out.UptimeSec = copyPtr(s.UptimeSec)
	out.Wifi = copyPtr(s.Wifi)
	return out
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// relaySlot maps a PowerIndex to its array slot. The broadcast index
// shares relay 1's slot. Indices cast past MaxRelays get no slot.
func relaySlot(idx types.PowerIndex) (int, bool) {
	if idx.IsAll() {
		return 0, true
	}
	if int(idx) < 1 || int(idx) > MaxRelays {
		return 0, false
	}
	return int(idx) - 1, true
}
