package broker

import "strings"

// Topic prefixes of the default Tasmota full-topic scheme
// (%prefix%/%topic%/...).
const (
	// PrefixCommand carries commands to a device.
	PrefixCommand = "cmnd"

	// PrefixStat carries command replies and state notifications.
	PrefixStat = "stat"

	// PrefixTele carries periodic telemetry and availability.
	PrefixTele = "tele"
)

// Well-known topic suffixes.
const (
	// SuffixLWT is the availability topic (retained Online/Offline).
	SuffixLWT = "LWT"

	// SuffixState is the periodic operational state message.
	SuffixState = "STATE"

	// SuffixSensor is the periodic sensor readings message.
	SuffixSensor = "SENSOR"

	// SuffixResult is the command echo reply.
	SuffixResult = "RESULT"
)

// LWT payloads.
const (
	PayloadOnline  = "Online"
	PayloadOffline = "Offline"
)

// GroupTopic is the group topic every Tasmota device subscribes to by
// default; commands published there reach all devices at once.
const GroupTopic = "tasmotas"

// CommandTopic returns the publish topic for a command to a device.
//
// Example: cmnd/garden-light/Power1
func CommandTopic(device, name string) string {
	return PrefixCommand + "/" + device + "/" + name
}

// StatFilter returns the subscription filter covering every stat
// message from a device.
func StatFilter(device string) string {
	return PrefixStat + "/" + device + "/+"
}

// TeleFilter returns the subscription filter covering every tele
// message from a device.
func TeleFilter(device string) string {
	return PrefixTele + "/" + device + "/+"
}

// SplitTopic splits an inbound topic into prefix, device and suffix.
//
// Returns:
//   - ok: false for topics that do not follow the three-level
//     prefix/device/suffix scheme
func SplitTopic(topic string) (prefix, device, suffix string, ok bool) {
	parts := strings.SplitN(topic, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// ValidDeviceTopic reports whether topic can be a device's %topic%:
// a single non-empty level without wildcards.
func ValidDeviceTopic(topic string) bool {
	return topic != "" && !strings.ContainsAny(topic, "/+#")
}
