package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/tasgo-io/tasgo/types"
)

// Routine step and delay bounds, from Tasmota's Backlog implementation.
const (
	// MaxRoutineSteps is the most commands a single Backlog accepts.
	MaxRoutineSteps = 30

	// Delay payloads are deciseconds in this range.
	minDelayDeciseconds = 1
	maxDelayDeciseconds = 65535
)

// Routine builds a sequence of commands executed atomically by the
// device as a single Backlog0 command. The firmware runs the steps in
// order without interleaving other commands, so a light can be flashed
// or a scene applied without another client's command landing mid-way.
//
// The zero value is ready to use:
//
//	cmd, err := command.NewRoutine().
//		PowerOn(types.PowerIndexAll).
//		Delay(500 * time.Millisecond).
//		PowerOff(types.PowerIndexAll).
//		Build()
//
// Build fails if the routine is empty or exceeds MaxRoutineSteps; all
// other methods never fail because they accept validated types.
type Routine struct {
	steps []string
}

// NewRoutine returns an empty routine builder.
func NewRoutine() *Routine {
	return &Routine{}
}

// Add appends any command as a step.
func (r *Routine) Add(cmd Command) *Routine {
	r.steps = append(r.steps, RequestString(cmd))
	return r
}

// AddRaw appends a literal "Name Payload" step without validation.
func (r *Routine) AddRaw(step string) *Routine {
	r.steps = append(r.steps, step)
	return r
}

// Delay pauses the routine. The device resolution is deciseconds; d is
// rounded to the nearest decisecond and clamped to the 0.1s-109min range
// the firmware accepts, so 500ms renders as "Delay 5".
func (r *Routine) Delay(d time.Duration) *Routine {
	ds := int64((d + 50*time.Millisecond) / (100 * time.Millisecond))
	if ds < minDelayDeciseconds {
		ds = minDelayDeciseconds
	}
	if ds > maxDelayDeciseconds {
		ds = maxDelayDeciseconds
	}
	return r.AddRaw(fmt.Sprintf("Delay %d", ds))
}

// PowerOn appends a step switching the relay at idx on.
func (r *Routine) PowerOn(idx types.PowerIndex) *Routine {
	return r.Add(PowerOn(idx))
}

// PowerOff appends a step switching the relay at idx off.
func (r *Routine) PowerOff(idx types.PowerIndex) *Routine {
	return r.Add(PowerOff(idx))
}

// PowerToggle appends a step inverting the relay at idx.
func (r *Routine) PowerToggle(idx types.PowerIndex) *Routine {
	return r.Add(TogglePower(idx))
}

// SetPower appends a step setting the relay at idx to state.
func (r *Routine) SetPower(idx types.PowerIndex, state types.PowerState) *Routine {
	return r.Add(SetPower(idx, state))
}

// SetDimmer appends a step setting the brightness.
func (r *Routine) SetDimmer(level types.Dimmer) *Routine {
	return r.Add(SetDimmer(level))
}

// SetColorTemp appends a step setting the white colour temperature.
func (r *Routine) SetColorTemp(ct types.ColorTemp) *Routine {
	return r.Add(SetColorTemp(ct))
}

// SetHsbColor appends a step setting the colour.
func (r *Routine) SetHsbColor(color types.HsbColor) *Routine {
	return r.Add(SetHsbColor(color))
}

// SetRgbColor appends a step setting the colour from an RGB value.
func (r *Routine) SetRgbColor(color types.RgbColor) *Routine {
	return r.Add(SetRgbColor(color))
}

// SetScheme appends a step selecting a light animation.
func (r *Routine) SetScheme(scheme types.Scheme) *Routine {
	return r.Add(SetScheme(scheme))
}

// SetWakeupDuration appends a step setting the wakeup ramp length.
func (r *Routine) SetWakeupDuration(d types.WakeupDuration) *Routine {
	return r.Add(SetWakeupDuration(d))
}

// EnableFade appends a step turning fading on.
func (r *Routine) EnableFade() *Routine {
	return r.Add(EnableFade())
}

// DisableFade appends a step turning fading off.
func (r *Routine) DisableFade() *Routine {
	return r.Add(DisableFade())
}

// SetFadeSpeed appends a step setting the fade speed.
func (r *Routine) SetFadeSpeed(speed types.FadeSpeed) *Routine {
	return r.Add(SetFadeSpeed(speed))
}

// Len returns the number of steps added so far.
func (r *Routine) Len() int {
	return len(r.steps)
}

// Build renders the routine as a single Backlog0 command.
//
// Backlog0 runs the steps without the inter-command delay Backlog
// inserts, so explicit Delay steps are the only pauses.
//
// Returns:
//   - Command: The composed command, payload steps joined with "; "
//   - error: ErrRoutineEmpty or ErrRoutineTooLong if the step count is
//     outside 1-MaxRoutineSteps
func (r *Routine) Build() (Command, error) {
	if len(r.steps) == 0 {
		return nil, ErrRoutineEmpty
	}
	if len(r.steps) > MaxRoutineSteps {
		return nil, fmt.Errorf("%w: %d steps (limit %d)", ErrRoutineTooLong, len(r.steps), MaxRoutineSteps)
	}
	return set("Backlog0", strings.Join(r.steps, "; ")), nil
}
