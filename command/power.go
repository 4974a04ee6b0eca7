package command

import "github.com/tasgo-io/tasgo/types"

// powerName returns the command name for a relay index: "Power" for the
// broadcast index, "Power1".."Power8" otherwise.
func powerName(idx types.PowerIndex) string {
	return "Power" + idx.Suffix()
}

// QueryPower asks for the current state of the relay at idx.
func QueryPower(idx types.PowerIndex) Command {
	return query(powerName(idx))
}

// SetPower switches the relay at idx to the given state.
func SetPower(idx types.PowerIndex, state types.PowerState) Command {
	return set(powerName(idx), state.String())
}

// PowerOn switches the relay at idx on.
func PowerOn(idx types.PowerIndex) Command {
	return SetPower(idx, types.PowerOn)
}

// PowerOff switches the relay at idx off.
func PowerOff(idx types.PowerIndex) Command {
	return SetPower(idx, types.PowerOff)
}

// TogglePower inverts the relay at idx.
func TogglePower(idx types.PowerIndex) Command {
	return SetPower(idx, types.PowerToggle)
}
