package command

import (
	"fmt"
	"time"
)

// Status type bounds.
const (
	minStatusType = 0
	maxStatusType = 13
)

// statusAllTimeout bounds the collection window for the multi-fragment
// Status 0 reply.
const statusAllTimeout = 5 * time.Second

// statusAllFragments lists the stat topic suffixes a Status 0 command
// fans out into. Devices without sensors omit some of these, which is
// why aggregated collection tolerates partial results.
var statusAllFragments = []string{
	"STATUS",
	"STATUS1",
	"STATUS2",
	"STATUS3",
	"STATUS4",
	"STATUS5",
	"STATUS6",
	"STATUS7",
	"STATUS11",
}

// QueryState asks for the device's current operational state (the same
// payload as the periodic tele STATE message).
func QueryState() Command {
	return query("State")
}

// QueryStatus requests a specific status report (Status <statusType>).
//
// Status types map to firmware report sections: 0 is the full report
// (aggregated, see StatusAll), 1 device parameters, 2 firmware, 5
// network, 8 sensor/energy readings, 11 operational state.
func QueryStatus(statusType int) (Command, error) {
	if statusType < minStatusType || statusType > maxStatusType {
		return nil, fmt.Errorf("%w: %d (valid range %d-%d)",
			ErrInvalidStatusType, statusType, minStatusType, maxStatusType)
	}
	if statusType == 0 {
		return StatusAll(), nil
	}
	return set("Status", fmt.Sprintf("%d", statusType)), nil
}

// StatusAbbreviated requests the short-form status report (Status with
// no payload).
func StatusAbbreviated() Command {
	return query("Status")
}

// StatusAll requests the full status report. The device answers with a
// burst of stat fragments (STATUS, STATUS1-STATUS7, STATUS11) which the
// transport collects and merges into a single response.
func StatusAll() Command {
	return Aggregated("Status", "0", statusAllFragments, statusAllTimeout)
}
