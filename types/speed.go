package types

import "fmt"

// Fade speed bounds. 1 is fastest, 40 is slowest (each step is ~0.5s
// of fade time on the device).
const (
	MinFadeSpeed = 1
	MaxFadeSpeed = 40
)

// FadeSpeed controls how quickly a light transitions between states
// when fading is enabled (Tasmota Speed command, 1-40).
type FadeSpeed uint8

// NewFadeSpeed validates speed against the 1-40 range.
func NewFadeSpeed(speed int) (FadeSpeed, error) {
	if speed < MinFadeSpeed || speed > MaxFadeSpeed {
		return 0, rangeErr("fade speed", speed, MinFadeSpeed, MaxFadeSpeed)
	}
	return FadeSpeed(speed), nil
}

// String returns the wire form used in Speed command payloads.
func (s FadeSpeed) String() string {
	return fmt.Sprintf("%d", uint8(s))
}
