package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tasgo-io/tasgo/command"
	"github.com/tasgo-io/tasgo/protocol"
	"github.com/tasgo-io/tasgo/state"
	"github.com/tasgo-io/tasgo/subscription"
	"github.com/tasgo-io/tasgo/types"
)

// fakeProtocol records sent command lines and answers from a scripted
// reply table keyed by command name.
type fakeProtocol struct {
	sent    []string
	replies map[string][]byte
	err     error
	closed  bool
}

func newFakeProtocol() *fakeProtocol {
	return &fakeProtocol{replies: make(map[string][]byte)}
}

func (f *fakeProtocol) SendCommand(_ context.Context, cmd command.Command) (*protocol.CommandResponse, error) {
	line := command.RequestString(cmd)
	f.sent = append(f.sent, line)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.replies[cmd.Name()]
	if !ok {
		body = []byte(`{}`)
	}
	return protocol.NewResponse(line, body), nil
}

func (f *fakeProtocol) SendRaw(ctx context.Context, line string) (*protocol.CommandResponse, error) {
	cmd, err := command.RawLine(line)
	if err != nil {
		return nil, err
	}
	return f.SendCommand(ctx, cmd)
}

func (f *fakeProtocol) Close() error {
	f.closed = true
	return nil
}

// sharedProtocol additionally exposes its own state and registry, the
// way an MQTT session does.
type sharedProtocol struct {
	fakeProtocol
	registry *subscription.Registry
	st       *state.DeviceState
}

func newSharedProtocol() *sharedProtocol {
	return &sharedProtocol{
		fakeProtocol: *newFakeProtocol(),
		registry:     subscription.NewRegistry(),
		st:           state.New(),
	}
}

func (s *sharedProtocol) Registry() *subscription.Registry { return s.registry }
func (s *sharedProtocol) StateSnapshot() *state.DeviceState {
	return s.st.Snapshot()
}

func TestCapabilityGatingBlocksBeforeSend(t *testing.T) {
	proto := newFakeProtocol()
	dev := New(proto, BasicRelay())

	tests := []struct {
		name string
		op   func(context.Context) error
	}{
		{"dimmer", func(ctx context.Context) error {
			return dev.SetDimmer(ctx, types.Dimmer(50))
		}},
		{"color temp", func(ctx context.Context) error {
			return dev.SetColorTemp(ctx, types.ColorTempNeutral)
		}},
		{"color", func(ctx context.Context) error {
			hsb, _ := types.NewHsbColor(120, 100, 50)
			return dev.SetHsbColor(ctx, hsb)
		}},
		{"scheme", func(ctx context.Context) error {
			return dev.SetScheme(ctx, types.SchemeCycleUp)
		}},
		{"fade", func(ctx context.Context) error {
			return dev.EnableFade(ctx)
		}},
		{"energy", func(ctx context.Context) error {
			_, err := dev.Energy(ctx)
			return err
		}},
		{"missing relay", func(ctx context.Context) error {
			idx, _ := types.NewPowerIndex(3)
			return dev.PowerOn(ctx, idx)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op(context.Background())
			if !errors.Is(err, ErrCapabilityUnsupported) {
				t.Fatalf("err = %v, want ErrCapabilityUnsupported", err)
			}
		})
	}
	if len(proto.sent) != 0 {
		t.Errorf("gated operations reached the wire: %v", proto.sent)
	}
}

func TestSetPowerSendsAndFoldsReply(t *testing.T) {
	proto := newFakeProtocol()
	proto.replies["Power1"] = []byte(`{"POWER1":"ON"}`)
	dev := New(proto, BasicRelay())

	var observed []types.PowerState
	dev.OnPowerChanged(func(idx types.PowerIndex, ps types.PowerState) {
		observed = append(observed, ps)
	})

	idx, _ := types.NewPowerIndex(1)
	if err := dev.PowerOn(context.Background(), idx); err != nil {
		t.Fatalf("PowerOn: %v", err)
	}

	if len(proto.sent) != 1 || proto.sent[0] != "Power1 ON" {
		t.Errorf("sent = %v, want [Power1 ON]", proto.sent)
	}
	if ps, ok := dev.State().RelayState(idx); !ok || ps != types.PowerOn {
		t.Errorf("RelayState = %v/%v, want ON", ps, ok)
	}
	if len(observed) != 1 || observed[0] != types.PowerOn {
		t.Errorf("observed = %v, want one ON event", observed)
	}
}

func TestQueryStateRefreshesSnapshot(t *testing.T) {
	proto := newFakeProtocol()
	proto.replies["State"] = []byte(`{"UptimeSec":120,"POWER":"ON","Dimmer":40}`)
	dev := New(proto, DimmableLight())

	st, err := dev.QueryState(context.Background())
	if err != nil {
		t.Fatalf("QueryState: %v", err)
	}
	if st.Dimmer == nil || *st.Dimmer != types.Dimmer(40) {
		t.Errorf("Dimmer = %v, want 40", st.Dimmer)
	}
	if !st.IsOn() {
		t.Error("IsOn() = false after POWER ON reply")
	}
	if st.UptimeSec == nil || *st.UptimeSec != 120 {
		t.Errorf("UptimeSec = %v, want 120", st.UptimeSec)
	}
}

func TestEnergyReadsStatus8(t *testing.T) {
	proto := newFakeProtocol()
	proto.replies["Status"] = []byte(`{"StatusSNS":{"ENERGY":{"Total":42.5,"Today":1.25,"Power":235,"Voltage":231,"Current":1.017}}}`)
	dev := New(proto, EnergyMonitor())

	reading, err := dev.Energy(context.Background())
	if err != nil {
		t.Fatalf("Energy: %v", err)
	}
	if reading.Power != 235 || reading.Total != 42.5 {
		t.Errorf("reading = %+v", reading)
	}
	if len(proto.sent) != 1 || proto.sent[0] != "Status 8" {
		t.Errorf("sent = %v, want [Status 8]", proto.sent)
	}
}

func TestEnergyWithoutBlockErrors(t *testing.T) {
	proto := newFakeProtocol()
	proto.replies["Status"] = []byte(`{"StatusSNS":{"Time":"2026-01-01T00:00:00"}}`)
	dev := New(proto, EnergyMonitor())

	if _, err := dev.Energy(context.Background()); !errors.Is(err, ErrNoEnergyData) {
		t.Fatalf("err = %v, want ErrNoEnergyData", err)
	}
}

func TestRunBuildsAndSendsRoutine(t *testing.T) {
	proto := newFakeProtocol()
	proto.replies["Backlog0"] = []byte(`{"POWER1":"OFF"}`)
	dev := New(proto, BasicRelay())

	idx, _ := types.NewPowerIndex(1)
	routine := command.NewRoutine().
		PowerOn(idx).
		Delay(500 * time.Millisecond).
		PowerOff(idx)

	resp, err := dev.Run(context.Background(), routine)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(proto.sent) != 1 || proto.sent[0] != "Backlog0 Power1 ON; Delay 5; Power1 OFF" {
		t.Errorf("sent = %v", proto.sent)
	}

	var decoded map[string]string
	if err := resp.Decode(&decoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded["POWER1"] != "OFF" {
		t.Errorf("reply POWER1 = %q, want OFF", decoded["POWER1"])
	}

	if _, err := dev.Run(context.Background(), command.NewRoutine()); err == nil {
		t.Error("empty routine should fail before the wire")
	}
}

func TestSharedStateIsNotDoubleApplied(t *testing.T) {
	proto := newSharedProtocol()
	proto.replies["Power1"] = []byte(`{"POWER1":"ON"}`)
	dev := New(proto, BasicRelay())

	var events int
	dev.OnPowerChanged(func(types.PowerIndex, types.PowerState) { events++ })

	idx, _ := types.NewPowerIndex(1)
	if err := dev.PowerOn(context.Background(), idx); err != nil {
		t.Fatalf("PowerOn: %v", err)
	}

	// The transport's router owns state updates; the facade must not
	// re-dispatch the reply it just received.
	if events != 0 {
		t.Errorf("events = %d, want 0 (router-fed transport)", events)
	}
	if dev.Registry() != proto.registry {
		t.Error("facade did not adopt the transport's registry")
	}
}

func TestTransportErrorPassesThrough(t *testing.T) {
	proto := newFakeProtocol()
	proto.err = protocol.ErrTimeout
	dev := New(proto, BasicRelay())

	idx, _ := types.NewPowerIndex(1)
	if err := dev.PowerOn(context.Background(), idx); !errors.Is(err, protocol.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestCloseReleasesTransport(t *testing.T) {
	proto := newFakeProtocol()
	dev := New(proto, BasicRelay())
	if err := dev.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !proto.closed {
		t.Error("transport not closed")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		state  string
		sensor string
		want   Capabilities
	}{
		{
			name:  "plain relay",
			state: `{"POWER":"ON"}`,
			want:  Capabilities{Relays: 1},
		},
		{
			name:  "two gang",
			state: `{"POWER1":"ON","POWER2":"OFF"}`,
			want:  Capabilities{Relays: 2},
		},
		{
			name:  "cct light",
			state: `{"POWER":"ON","Dimmer":80,"CT":300}`,
			want:  Capabilities{Relays: 1, Dimming: true, ColorTemp: true},
		},
		{
			name:  "rgb light",
			state: `{"POWER":"ON","Dimmer":80,"HSBColor":"120,100,50"}`,
			want:  Capabilities{Relays: 1, Dimming: true, Color: true},
		},
		{
			name:   "energy plug",
			state:  `{"POWER":"ON"}`,
			sensor: `{"ENERGY":{"Power":12.5}}`,
			want:   Capabilities{Relays: 1, Energy: true},
		},
		{
			name:   "sensor without energy block",
			state:  `{"POWER":"ON"}`,
			sensor: `{"Time":"2026-01-01T00:00:00"}`,
			want:   Capabilities{Relays: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect([]byte(tt.state), []byte(tt.sensor))
			if got != tt.want {
				t.Errorf("Detect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromPresetName(t *testing.T) {
	tests := []struct {
		name   string
		preset string
		relays int
		want   Capabilities
	}{
		{"dimmer", "dimmer", 0, DimmableLight()},
		{"cct", "CCT", 0, CCTLight()},
		{"rgbcct", "rgbcct", 0, RGBCCTLight()},
		{"energy", "energy", 0, EnergyMonitor()},
		{"unknown falls back", "frobnicator", 0, BasicRelay()},
		{"relay override", "relay", 4, MultiRelay(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromPresetName(tt.preset, tt.relays); got != tt.want {
				t.Errorf("FromPresetName(%q, %d) = %+v, want %+v", tt.preset, tt.relays, got, tt.want)
			}
		})
	}
}
