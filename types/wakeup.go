package types

import "fmt"

// Wakeup duration bounds in seconds.
const (
	MinWakeupDuration = 1
	MaxWakeupDuration = 3000
)

// WakeupDuration is the length of a wakeup brightness ramp in seconds
// (Tasmota WakeupDuration command, 1-3000).
type WakeupDuration uint16

// NewWakeupDuration validates seconds against the 1-3000 range.
func NewWakeupDuration(seconds int) (WakeupDuration, error) {
	if seconds < MinWakeupDuration || seconds > MaxWakeupDuration {
		return 0, rangeErr("wakeup duration", seconds, MinWakeupDuration, MaxWakeupDuration)
	}
	return WakeupDuration(seconds), nil
}

// Seconds returns the duration in seconds.
func (w WakeupDuration) Seconds() int {
	return int(w)
}

// String returns the wire form used in WakeupDuration command payloads.
func (w WakeupDuration) String() string {
	return fmt.Sprintf("%d", uint16(w))
}
