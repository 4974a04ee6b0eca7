package types

import "fmt"

// Dimmer level bounds (percent).
const (
	MinDimmer = 0
	MaxDimmer = 100
)

// Dimmer is a brightness level in percent (0-100).
type Dimmer uint8

// NewDimmer validates level against the 0-100 range.
func NewDimmer(level int) (Dimmer, error) {
	if level < MinDimmer || level > MaxDimmer {
		return 0, rangeErr("dimmer", level, MinDimmer, MaxDimmer)
	}
	return Dimmer(level), nil
}

// NewDimmerClamped clamps level into the 0-100 range instead of rejecting.
func NewDimmerClamped(level int) Dimmer {
	if level < MinDimmer {
		return MinDimmer
	}
	if level > MaxDimmer {
		return MaxDimmer
	}
	return Dimmer(level)
}

// Percent returns the level as an int.
func (d Dimmer) Percent() int {
	return int(d)
}

// String returns the wire form used in Dimmer command payloads.
func (d Dimmer) String() string {
	return fmt.Sprintf("%d", uint8(d))
}
