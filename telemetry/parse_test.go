package telemetry

import (
	"errors"
	"testing"

	"github.com/tasgo-io/tasgo/state"
	"github.com/tasgo-io/tasgo/types"
)

func TestParseStateFullTelemetry(t *testing.T) {
	payload := []byte(`{
		"Time": "2024-03-01T12:00:00",
		"Uptime": "0T01:02:03",
		"UptimeSec": 3723,
		"POWER": "ON",
		"Dimmer": 75,
		"HSBColor": "30,100,100",
		"CT": 300,
		"Scheme": 0,
		"Fade": "ON",
		"Speed": 5,
		"Wifi": {"AP":1,"SSId":"garden","Channel":6,"RSSI":84,"Signal":-58}
	}`)

	changes, err := ParseState(payload)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}

	s := state.New()
	s.ApplyAll(changes)

	if !s.IsOn() {
		t.Error("relay should be on")
	}
	if s.Dimmer == nil || s.Dimmer.Percent() != 75 {
		t.Errorf("Dimmer = %v, want 75", s.Dimmer)
	}
	if s.Color == nil || s.Color.String() != "30,100,100" {
		t.Errorf("Color = %v, want 30,100,100", s.Color)
	}
	if s.ColorTemp == nil || s.ColorTemp.Mireds() != 300 {
		t.Errorf("ColorTemp = %v, want 300", s.ColorTemp)
	}
	if s.Fade == nil || !*s.Fade {
		t.Error("Fade should be enabled")
	}
	if s.FadeSpeed == nil || *s.FadeSpeed != 5 {
		t.Errorf("FadeSpeed = %v, want 5", s.FadeSpeed)
	}
	if s.UptimeSec == nil || *s.UptimeSec != 3723 {
		t.Errorf("UptimeSec = %v, want 3723", s.UptimeSec)
	}
	if s.Wifi == nil || s.Wifi.SSID != "garden" || s.Wifi.Signal != -58 {
		t.Errorf("Wifi = %+v", s.Wifi)
	}
}

func TestParseStateMultiRelay(t *testing.T) {
	payload := []byte(`{"POWER1":"ON","POWER2":"OFF","POWER4":"ON"}`)
	changes, err := ParseState(payload)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	if len(changes) != 3 {
		t.Fatalf("got %d changes, want 3", len(changes))
	}

	s := state.New()
	s.ApplyAll(changes)
	idx4, _ := types.NewPowerIndex(4)
	if got, ok := s.RelayState(idx4); !ok || got != types.PowerOn {
		t.Errorf("relay 4 = %v, %v, want PowerOn", got, ok)
	}
	idx3, _ := types.NewPowerIndex(3)
	if _, ok := s.RelayState(idx3); ok {
		t.Error("relay 3 was not reported, should be unknown")
	}
}

func TestParseStateStatusWrapper(t *testing.T) {
	payload := []byte(`{"StatusSTS":{"POWER":"OFF","Dimmer":40}}`)
	changes, err := ParseState(payload)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
}

func TestParseStateSkipsInvalidFields(t *testing.T) {
	// Dimmer out of range, HSB malformed; POWER still parses.
	payload := []byte(`{"POWER":"ON","Dimmer":150,"HSBColor":"1,2"}`)
	changes, err := ParseState(payload)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != state.KindPower {
		t.Errorf("changes = %+v, want single power change", changes)
	}
}

func TestParseStateRejectsBrokenJSON(t *testing.T) {
	if _, err := ParseState([]byte(`{"POWER":`)); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("error = %v, want ErrInvalidJSON", err)
	}
}

func TestParseSensorEnergy(t *testing.T) {
	payload := []byte(`{
		"Time": "2024-03-01T12:00:00",
		"ENERGY": {
			"TotalStartTime": "2024-01-01T00:00:00",
			"Total": 42.5, "Yesterday": 1.2, "Today": 0.8,
			"Power": 118, "ApparentPower": 125, "ReactivePower": 40,
			"Factor": 0.94, "Voltage": 231, "Current": 0.54
		}
	}`)

	changes, err := ParseSensor(payload)
	if err != nil {
		t.Fatalf("ParseSensor: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	e := changes[0].Energy
	if e.Power != 118 || e.Total != 42.5 || e.Voltage != 231 {
		t.Errorf("energy reading = %+v", e)
	}
}

func TestParseSensorStatusWrapper(t *testing.T) {
	payload := []byte(`{"StatusSNS":{"ENERGY":{"Power":60,"Total":10}}}`)
	changes, err := ParseSensor(payload)
	if err != nil {
		t.Fatalf("ParseSensor: %v", err)
	}
	if len(changes) != 1 || changes[0].Energy.Power != 60 {
		t.Errorf("changes = %+v", changes)
	}
}

func TestParseSensorWithoutEnergy(t *testing.T) {
	changes, err := ParseSensor([]byte(`{"Time":"2024-03-01T12:00:00","DS18B20":{"Temperature":21.2}}`))
	if err != nil {
		t.Fatalf("ParseSensor: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("got %d changes, want 0", len(changes))
	}
}

func TestParsePowerTopic(t *testing.T) {
	tests := []struct {
		name    string
		suffix  string
		payload string
		relay   int
		power   types.PowerState
		ok      bool
	}{
		{name: "bare power", suffix: "POWER", payload: "ON", relay: 0, power: types.PowerOn, ok: true},
		{name: "indexed", suffix: "POWER3", payload: "OFF", relay: 3, power: types.PowerOff, ok: true},
		{name: "not a power topic", suffix: "RESULT", payload: "ON", ok: false},
		{name: "bad index", suffix: "POWER9", payload: "ON", ok: false},
		{name: "bad payload", suffix: "POWER1", payload: "{}", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, ok := ParsePowerTopic(tt.suffix, []byte(tt.payload))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if int(change.Relay) != tt.relay || change.Power != tt.power {
				t.Errorf("change = %+v, want relay %d state %v", change, tt.relay, tt.power)
			}
		})
	}
}
