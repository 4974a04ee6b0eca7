package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tasgo-io/tasgo/state"
	"github.com/tasgo-io/tasgo/types"
)

// ErrInvalidJSON is returned when a payload is not valid JSON.
var ErrInvalidJSON = errors.New("telemetry: invalid JSON payload")

// stateMessage mirrors the fields of tele STATE / stat RESULT payloads
// this library tracks. Pointer fields distinguish "absent" from zero.
type stateMessage struct {
	UptimeSec *int64  `json:"UptimeSec"`
	Power     *string `json:"POWER"`
	Power1    *string `json:"POWER1"`
	Power2    *string `json:"POWER2"`
	Power3    *string `json:"POWER3"`
	Power4    *string `json:"POWER4"`
	Power5    *string `json:"POWER5"`
	Power6    *string `json:"POWER6"`
	Power7    *string `json:"POWER7"`
	Power8    *string `json:"POWER8"`
	Dimmer    *int    `json:"Dimmer"`
	HSBColor  *string `json:"HSBColor"`
	CT        *int    `json:"CT"`
	Scheme    *int    `json:"Scheme"`
	Fade      *string `json:"Fade"`
	Speed     *int    `json:"Speed"`
	Wifi      *struct {
		SSID    string `json:"SSId"`
		Channel int    `json:"Channel"`
		RSSI    int    `json:"RSSI"`
		Signal  int    `json:"Signal"`
	} `json:"Wifi"`

	// Status 11 replies wrap the state object in StatusSTS.
	StatusSTS *stateMessage `json:"StatusSTS"`
}

// ParseState extracts state changes from a tele STATE, stat RESULT or
// stat STATUS11 payload.
//
// Returns:
//   - []state.Change: The recognised changes, in payload order
//   - error: ErrInvalidJSON (wrapped) if the payload is not JSON
func ParseState(payload []byte) ([]state.Change, error) {
	var msg stateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if msg.StatusSTS != nil {
		msg = *msg.StatusSTS
	}

	var changes []state.Change

	for i, raw := range []*string{
		msg.Power, msg.Power1, msg.Power2, msg.Power3, msg.Power4,
		msg.Power5, msg.Power6, msg.Power7, msg.Power8,
	} {
		if raw == nil {
			continue
		}
		ps, err := types.ParsePowerState(*raw)
		if err != nil {
			continue
		}
		// Slot 0 is the bare POWER key, reported by single-relay
		// devices; it addresses relay 1.
		idx := types.PowerIndex(i)
		changes = append(changes, state.PowerChange(idx, ps))
	}

	if msg.Dimmer != nil {
		if d, err := types.NewDimmer(*msg.Dimmer); err == nil {
			changes = append(changes, state.DimmerChange(d))
		}
	}
	if msg.HSBColor != nil {
		if hsb, err := parseHsb(*msg.HSBColor); err == nil {
			changes = append(changes, state.ColorChange(hsb))
		}
	}
	if msg.CT != nil {
		if ct, err := types.NewColorTemp(*msg.CT); err == nil {
			changes = append(changes, state.ColorTempChange(ct))
		}
	}
	if msg.Scheme != nil {
		if sc, err := types.NewScheme(*msg.Scheme); err == nil {
			changes = append(changes, state.SchemeChange(sc))
		}
	}
	if msg.Fade != nil {
		if ps, err := types.ParsePowerState(*msg.Fade); err == nil {
			changes = append(changes, state.FadeChange(ps.IsOn()))
		}
	}
	if msg.Speed != nil {
		if sp, err := types.NewFadeSpeed(*msg.Speed); err == nil {
			changes = append(changes, state.FadeSpeedChange(sp))
		}
	}
	if msg.UptimeSec != nil {
		changes = append(changes, state.UptimeChange(*msg.UptimeSec))
	}
	if msg.Wifi != nil {
		changes = append(changes, state.WifiChange(state.WifiStatus{
			SSID:    msg.Wifi.SSID,
			Channel: msg.Wifi.Channel,
			RSSI:    msg.Wifi.RSSI,
			Signal:  msg.Wifi.Signal,
		}))
	}

	return changes, nil
}

// sensorMessage mirrors tele SENSOR and Status 8/10 payloads.
type sensorMessage struct {
	Energy *struct {
		TotalStartTime string  `json:"TotalStartTime"`
		Total          float64 `json:"Total"`
		Yesterday      float64 `json:"Yesterday"`
		Today          float64 `json:"Today"`
		Power          float64 `json:"Power"`
		ApparentPower  float64 `json:"ApparentPower"`
		ReactivePower  float64 `json:"ReactivePower"`
		Factor         float64 `json:"Factor"`
		Voltage        float64 `json:"Voltage"`
		Current        float64 `json:"Current"`
	} `json:"ENERGY"`

	// Status 8/10 replies wrap the sensor object in StatusSNS.
	StatusSNS *sensorMessage `json:"StatusSNS"`
}

// ParseSensor extracts energy changes from a tele SENSOR, stat STATUS8
// or stat STATUS10 payload. Devices without energy monitoring publish
// sensor messages with no ENERGY block; those yield no changes.
func ParseSensor(payload []byte) ([]state.Change, error) {
	var msg sensorMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if msg.StatusSNS != nil {
		msg = *msg.StatusSNS
	}
	if msg.Energy == nil {
		return nil, nil
	}

	e := msg.Energy
	return []state.Change{state.EnergyChange(state.EnergyReading{
		Power:          e.Power,
		ApparentPower:  e.ApparentPower,
		ReactivePower:  e.ReactivePower,
		Factor:         e.Factor,
		Voltage:        e.Voltage,
		Current:        e.Current,
		Today:          e.Today,
		Yesterday:      e.Yesterday,
		Total:          e.Total,
		TotalStartTime: e.TotalStartTime,
	})}, nil
}

// ParsePowerTopic handles bare stat POWER messages, whose payload is a
// plain "ON"/"OFF" string rather than JSON. The topic suffix carries the
// relay index ("POWER", "POWER1".."POWER8").
//
// Returns:
//   - state.Change: The power change
//   - bool: false if the suffix is not a POWER topic or the payload is
//     not a power state
func ParsePowerTopic(suffix string, payload []byte) (state.Change, bool) {
	if !strings.HasPrefix(suffix, "POWER") {
		return state.Change{}, false
	}
	idx := types.PowerIndexAll
	if rest := suffix[len("POWER"):]; rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return state.Change{}, false
		}
		idx, err = types.NewPowerIndex(n)
		if err != nil {
			return state.Change{}, false
		}
	}
	ps, err := types.ParsePowerState(string(payload))
	if err != nil {
		return state.Change{}, false
	}
	return state.PowerChange(idx, ps), true
}

func parseHsb(s string) (types.HsbColor, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return types.HsbColor{}, fmt.Errorf("telemetry: malformed HSB value %q", s)
	}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return types.HsbColor{}, fmt.Errorf("telemetry: malformed HSB value %q: %w", s, err)
		}
		vals[i] = n
	}
	return types.NewHsbColor(vals[0], vals[1], vals[2])
}
