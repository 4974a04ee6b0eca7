package subscription

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tasgo-io/tasgo/state"
	"github.com/tasgo-io/tasgo/types"
)

// ID identifies a registered callback.
type ID string

// Callback signatures for the typed event hooks.
type (
	// StateCallback receives every state change.
	StateCallback func(change state.Change)

	// PowerCallback receives relay switching events.
	PowerCallback func(relay types.PowerIndex, power types.PowerState)

	// DimmerCallback receives brightness changes.
	DimmerCallback func(level types.Dimmer)

	// ColorCallback receives colour changes.
	ColorCallback func(color types.HsbColor)

	// ColorTempCallback receives white colour temperature changes.
	ColorTempCallback func(ct types.ColorTemp)

	// EnergyCallback receives fresh energy readings.
	EnergyCallback func(reading state.EnergyReading)

	// ConnectivityCallback receives connection lifecycle events.
	ConnectivityCallback func()
)

// entry pairs a callback with the event class it listens to.
type entry struct {
	onState     StateCallback
	onPower     PowerCallback
	onDimmer    DimmerCallback
	onColor     ColorCallback
	onColorTemp ColorTempCallback
	onEnergy    EnergyCallback

	onConnected    ConnectivityCallback
	onDisconnected ConnectivityCallback
	onReconnected  ConnectivityCallback
}

// Registry is a thread-safe callback registry for one device.
//
// The zero value is not usable; create with NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	entries map[ID]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ID]entry)}
}

func (r *Registry) add(e entry) ID {
	id := ID(uuid.NewString())
	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()
	return id
}

// OnStateChanged registers a catch-all hook invoked for every state change.
func (r *Registry) OnStateChanged(cb StateCallback) ID {
	return r.add(entry{onState: cb})
}

// OnPowerChanged registers a hook for relay switching events.
func (r *Registry) OnPowerChanged(cb PowerCallback) ID {
	return r.add(entry{onPower: cb})
}

// OnDimmerChanged registers a hook for brightness changes.
func (r *Registry) OnDimmerChanged(cb DimmerCallback) ID {
	return r.add(entry{onDimmer: cb})
}

// OnColorChanged registers a hook for colour changes.
func (r *Registry) OnColorChanged(cb ColorCallback) ID {
	return r.add(entry{onColor: cb})
}

// OnColorTempChanged registers a hook for colour temperature changes.
func (r *Registry) OnColorTempChanged(cb ColorTempCallback) ID {
	return r.add(entry{onColorTemp: cb})
}

// OnEnergyUpdated registers a hook for energy readings.
func (r *Registry) OnEnergyUpdated(cb EnergyCallback) ID {
	return r.add(entry{onEnergy: cb})
}

// OnConnected registers a hook fired when the device comes online.
func (r *Registry) OnConnected(cb ConnectivityCallback) ID {
	return r.add(entry{onConnected: cb})
}

// OnDisconnected registers a hook fired when the device goes offline.
func (r *Registry) OnDisconnected(cb ConnectivityCallback) ID {
	return r.add(entry{onDisconnected: cb})
}

// OnReconnected registers a hook fired after the transport reconnects
// and subscriptions have been restored.
func (r *Registry) OnReconnected(cb ConnectivityCallback) ID {
	return r.add(entry{onReconnected: cb})
}

// Unsubscribe removes a callback.
//
// Returns:
//   - bool: true if the ID was registered, false if unknown or already
//     removed
func (r *Registry) Unsubscribe(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// snapshot copies the current entries so dispatch runs without holding
// the lock.
func (r *Registry) snapshot() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// DispatchChange fans a state change out to the matching typed hooks
// and every catch-all hook.
func (r *Registry) DispatchChange(change state.Change) {
	for _, e := range r.snapshot() {
		if e.onState != nil {
			e.onState(change)
		}
		switch change.Kind {
		case state.KindPower:
			if e.onPower != nil {
				e.onPower(change.Relay, change.Power)
			}
		case state.KindDimmer:
			if e.onDimmer != nil {
				e.onDimmer(change.Dimmer)
			}
		case state.KindColor:
			if e.onColor != nil {
				e.onColor(change.Color)
			}
		case state.KindColorTemp:
			if e.onColorTemp != nil {
				e.onColorTemp(change.ColorTemp)
			}
		case state.KindEnergy:
			if e.onEnergy != nil {
				e.onEnergy(change.Energy)
			}
		}
	}
}

// DispatchConnected fires the connected hooks.
func (r *Registry) DispatchConnected() {
	for _, e := range r.snapshot() {
		if e.onConnected != nil {
			e.onConnected()
		}
	}
}

// DispatchDisconnected fires the disconnected hooks.
func (r *Registry) DispatchDisconnected() {
	for _, e := range r.snapshot() {
		if e.onDisconnected != nil {
			e.onDisconnected()
		}
	}
}

// DispatchReconnected fires the reconnected hooks.
func (r *Registry) DispatchReconnected() {
	for _, e := range r.snapshot() {
		if e.onReconnected != nil {
			e.onReconnected()
		}
	}
}
