package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/tasgo-io/tasgo/command"
	"github.com/tasgo-io/tasgo/protocol"
	"github.com/tasgo-io/tasgo/state"
	"github.com/tasgo-io/tasgo/subscription"
	"github.com/tasgo-io/tasgo/telemetry"
	"github.com/tasgo-io/tasgo/types"
)

// stateSource is implemented by transports that maintain the device's
// state and callbacks themselves (the MQTT session). Transports without
// it (HTTP) get a device-owned state fed from command replies.
type stateSource interface {
	Registry() *subscription.Registry
	StateSnapshot() *state.DeviceState
}

// Device is the typed handle for one Tasmota device over either
// transport.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Command ordering towards
//     one device follows the underlying transport's serialisation.
type Device struct {
	proto protocol.Protocol
	caps  Capabilities

	registry *subscription.Registry

	// shared is non-nil when the transport owns state (MQTT).
	shared stateSource

	// own is the device-held state for transports without push (HTTP).
	own   *state.DeviceState
	ownMu sync.Mutex
}

// New wraps a transport in a typed device handle.
//
// If the transport maintains its own state and callback registry (an
// MQTT session does), the device shares them, so events flow whether
// they came from commands, other clients, or the device itself. For
// other transports the device owns both and updates state from each
// command's reply.
func New(proto protocol.Protocol, caps Capabilities) *Device {
	d := &Device{
		proto: proto,
		caps:  caps,
	}
	if ss, ok := proto.(stateSource); ok {
		d.shared = ss
		d.registry = ss.Registry()
	} else {
		d.registry = subscription.NewRegistry()
		d.own = state.New()
	}
	return d
}

// Capabilities returns the device's declared capabilities.
func (d *Device) Capabilities() Capabilities {
	return d.caps
}

// State returns an independent snapshot of the device's aggregated
// state.
func (d *Device) State() *state.DeviceState {
	if d.shared != nil {
		return d.shared.StateSnapshot()
	}
	d.ownMu.Lock()
	defer d.ownMu.Unlock()
	return d.own.Snapshot()
}

// Close releases the underlying transport.
func (d *Device) Close() error {
	return d.proto.Close()
}

// ===== Commands =====

// SendCommand sends any command and folds its reply into the device
// state where the transport does not do that itself.
func (d *Device) SendCommand(ctx context.Context, cmd command.Command) (*protocol.CommandResponse, error) {
	resp, err := d.proto.SendCommand(ctx, cmd)
	if resp != nil {
		d.absorbReply(resp.Body)
	}
	return resp, err
}

// SendRaw sends a literal "Name Payload" command line.
func (d *Device) SendRaw(ctx context.Context, line string) (*protocol.CommandResponse, error) {
	resp, err := d.proto.SendRaw(ctx, line)
	if resp != nil {
		d.absorbReply(resp.Body)
	}
	return resp, err
}

// SetPower switches the relay at idx.
func (d *Device) SetPower(ctx context.Context, idx types.PowerIndex, power types.PowerState) error {
	if !d.caps.HasRelay(idx) {
		return fmt.Errorf("%w: relay %d of %d", ErrCapabilityUnsupported, int(idx), d.caps.Relays)
	}
	_, err := d.SendCommand(ctx, command.SetPower(idx, power))
	return err
}

// PowerOn switches the relay at idx on.
func (d *Device) PowerOn(ctx context.Context, idx types.PowerIndex) error {
	return d.SetPower(ctx, idx, types.PowerOn)
}

// PowerOff switches the relay at idx off.
func (d *Device) PowerOff(ctx context.Context, idx types.PowerIndex) error {
	return d.SetPower(ctx, idx, types.PowerOff)
}

// PowerToggle inverts the relay at idx.
func (d *Device) PowerToggle(ctx context.Context, idx types.PowerIndex) error {
	return d.SetPower(ctx, idx, types.PowerToggle)
}

// SetDimmer sets the brightness.
func (d *Device) SetDimmer(ctx context.Context, level types.Dimmer) error {
	if !d.caps.Dimming {
		return fmt.Errorf("%w: dimming", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.SetDimmer(level))
	return err
}

// SetColorTemp sets the white colour temperature.
func (d *Device) SetColorTemp(ctx context.Context, ct types.ColorTemp) error {
	if !d.caps.ColorTemp {
		return fmt.Errorf("%w: color temperature", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.SetColorTemp(ct))
	return err
}

// SetHsbColor sets the colour.
func (d *Device) SetHsbColor(ctx context.Context, color types.HsbColor) error {
	if !d.caps.Color {
		return fmt.Errorf("%w: color", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.SetHsbColor(color))
	return err
}

// SetRgbColor sets the colour from an RGB value.
func (d *Device) SetRgbColor(ctx context.Context, color types.RgbColor) error {
	return d.SetHsbColor(ctx, color.ToHsb())
}

// SetScheme selects a light animation.
func (d *Device) SetScheme(ctx context.Context, scheme types.Scheme) error {
	if !d.caps.Color {
		return fmt.Errorf("%w: schemes", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.SetScheme(scheme))
	return err
}

// SetFadeSpeed sets the light transition speed.
func (d *Device) SetFadeSpeed(ctx context.Context, speed types.FadeSpeed) error {
	if !d.caps.Dimming {
		return fmt.Errorf("%w: fading", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.SetFadeSpeed(speed))
	return err
}

// EnableFade turns on fading between light states.
func (d *Device) EnableFade(ctx context.Context) error {
	if !d.caps.Dimming {
		return fmt.Errorf("%w: fading", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.EnableFade())
	return err
}

// DisableFade makes light state changes immediate.
func (d *Device) DisableFade(ctx context.Context) error {
	if !d.caps.Dimming {
		return fmt.Errorf("%w: fading", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.DisableFade())
	return err
}

// SetWakeupDuration sets the wakeup ramp length.
func (d *Device) SetWakeupDuration(ctx context.Context, duration types.WakeupDuration) error {
	if !d.caps.Dimming {
		return fmt.Errorf("%w: wakeup", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.SetWakeupDuration(duration))
	return err
}

// Wakeup starts a wakeup brightness ramp.
func (d *Device) Wakeup(ctx context.Context) error {
	if !d.caps.Dimming {
		return fmt.Errorf("%w: wakeup", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.StartWakeup())
	return err
}

// Run executes a routine atomically on the device and returns the
// device's reply to the composed command.
func (d *Device) Run(ctx context.Context, routine *command.Routine) (*protocol.CommandResponse, error) {
	cmd, err := routine.Build()
	if err != nil {
		return nil, err
	}
	return d.SendCommand(ctx, cmd)
}

// ===== Queries =====

// QueryState refreshes the operational state (relays, light channels,
// uptime) and returns the updated snapshot.
func (d *Device) QueryState(ctx context.Context) (*state.DeviceState, error) {
	resp, err := d.SendCommand(ctx, command.QueryState())
	if err != nil {
		return nil, err
	}
	d.absorbInto(resp.Body)
	return d.State(), nil
}

// QueryStatus requests the full aggregated status report (Status 0)
// and folds its state and sensor sections into the device state.
//
// A partial aggregate still refreshes the state from the fragments that
// arrived; the ErrPartialAggregate-wrapped error is passed through so
// the caller can decide whether partial data suffices.
func (d *Device) QueryStatus(ctx context.Context) (*protocol.CommandResponse, error) {
	resp, err := d.SendCommand(ctx, command.StatusAll())
	if resp != nil {
		d.absorbInto(resp.Body)
	}
	return resp, err
}

// Energy queries the current energy reading (Status 8).
func (d *Device) Energy(ctx context.Context) (state.EnergyReading, error) {
	if !d.caps.Energy {
		return state.EnergyReading{}, fmt.Errorf("%w: energy monitoring", ErrCapabilityUnsupported)
	}
	resp, err := d.SendCommand(ctx, command.QueryEnergy())
	if err != nil {
		return state.EnergyReading{}, err
	}
	changes, err := telemetry.ParseSensor(resp.Body)
	if err != nil {
		return state.EnergyReading{}, err
	}
	for _, c := range changes {
		if c.Kind == state.KindEnergy {
			d.applyOwn(changes)
			return c.Energy, nil
		}
	}
	return state.EnergyReading{}, ErrNoEnergyData
}

// ResetEnergyTotal zeroes the lifetime energy counter.
func (d *Device) ResetEnergyTotal(ctx context.Context) error {
	if !d.caps.Energy {
		return fmt.Errorf("%w: energy monitoring", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.ResetEnergyTotal())
	return err
}

// ResetEnergyToday zeroes today's energy counter.
func (d *Device) ResetEnergyToday(ctx context.Context) error {
	if !d.caps.Energy {
		return fmt.Errorf("%w: energy monitoring", ErrCapabilityUnsupported)
	}
	_, err := d.SendCommand(ctx, command.ResetEnergyToday())
	return err
}

// ===== Subscriptions =====

// Registry exposes the device's callback registry for registrations
// beyond the convenience forwards below.
func (d *Device) Registry() *subscription.Registry {
	return d.registry
}

// OnPowerChanged registers a hook for relay switching events.
func (d *Device) OnPowerChanged(cb subscription.PowerCallback) subscription.ID {
	return d.registry.OnPowerChanged(cb)
}

// OnDimmerChanged registers a hook for brightness changes.
func (d *Device) OnDimmerChanged(cb subscription.DimmerCallback) subscription.ID {
	return d.registry.OnDimmerChanged(cb)
}

// OnColorChanged registers a hook for colour changes.
func (d *Device) OnColorChanged(cb subscription.ColorCallback) subscription.ID {
	return d.registry.OnColorChanged(cb)
}

// OnColorTempChanged registers a hook for white temperature changes.
func (d *Device) OnColorTempChanged(cb subscription.ColorTempCallback) subscription.ID {
	return d.registry.OnColorTempChanged(cb)
}

// OnEnergyUpdated registers a hook for energy readings.
func (d *Device) OnEnergyUpdated(cb subscription.EnergyCallback) subscription.ID {
	return d.registry.OnEnergyUpdated(cb)
}

// OnStateChanged registers a catch-all state hook.
func (d *Device) OnStateChanged(cb subscription.StateCallback) subscription.ID {
	return d.registry.OnStateChanged(cb)
}

// Unsubscribe removes a previously registered callback.
func (d *Device) Unsubscribe(id subscription.ID) bool {
	return d.registry.Unsubscribe(id)
}

// ===== Reply absorption (transports without push) =====

// absorbReply opportunistically parses a command echo into state.
// Shared-state transports already routed the same message; their
// idempotent Apply makes this a no-op there, so it only runs for owned
// state.
func (d *Device) absorbReply(body []byte) {
	if d.shared != nil || len(body) == 0 {
		return
	}
	if changes, err := telemetry.ParseState(body); err == nil {
		d.applyOwn(changes)
	}
}

// absorbInto additionally tries the sensor shape, for Status replies
// carrying both StatusSTS and StatusSNS sections.
func (d *Device) absorbInto(body []byte) {
	if d.shared != nil || len(body) == 0 {
		return
	}
	if changes, err := telemetry.ParseState(body); err == nil {
		d.applyOwn(changes)
	}
	if changes, err := telemetry.ParseSensor(body); err == nil {
		d.applyOwn(changes)
	}
}

// applyOwn folds changes into the owned state and dispatches the
// effective ones.
func (d *Device) applyOwn(changes []state.Change) {
	if d.shared != nil || len(changes) == 0 {
		return
	}
	d.ownMu.Lock()
	applied := d.own.ApplyAll(changes)
	d.ownMu.Unlock()
	for _, c := range applied {
		d.registry.DispatchChange(c)
	}
}
