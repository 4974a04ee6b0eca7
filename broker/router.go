package broker

import (
	"strings"

	"github.com/tasgo-io/tasgo/state"
	"github.com/tasgo-io/tasgo/telemetry"
)

// handleMessage routes one inbound message by its topic.
//
// stat messages feed the owning session's reply slot and, where they
// carry state, its callbacks. tele messages feed callbacks only. The
// router never retries and never blocks: unroutable messages are
// dropped with a debug log, full reply slots drop the oldest-pending
// semantics in favour of the drain on the next send.
func (b *Broker) handleMessage(topic string, payload []byte) {
	prefix, device, suffix, ok := SplitTopic(topic)
	if !ok {
		b.debug("dropping message with unroutable topic", "topic", topic)
		return
	}

	if d := b.activeDiscovery(); d != nil {
		d.observe(prefix, device, suffix)
	}

	s := b.session(device)
	if s == nil {
		b.debug("dropping message for unattached device", "topic", topic)
		return
	}

	switch prefix {
	case PrefixStat:
		b.routeStat(s, suffix, payload)
	case PrefixTele:
		b.routeTele(s, suffix, payload)
	default:
		b.debug("dropping message with unknown prefix", "topic", topic)
	}
}

// routeStat handles a stat/<device>/<suffix> message.
func (b *Broker) routeStat(s *Session, suffix string, payload []byte) {
	// Reply correlation first: a pending send is waiting on this slot.
	s.deliverReply(suffix, payload, b.getLogger())

	// State extraction second, so subscribers see command effects
	// without polling.
	switch {
	case suffix == SuffixResult || suffix == "STATUS11":
		changes, err := telemetry.ParseState(payload)
		if err != nil {
			b.debug("unparseable stat payload", "device", s.device, "suffix", suffix, "error", err)
			return
		}
		s.applyAndDispatch(changes)

	case suffix == "STATUS8" || suffix == "STATUS10":
		changes, err := telemetry.ParseSensor(payload)
		if err != nil {
			b.debug("unparseable sensor payload", "device", s.device, "suffix", suffix, "error", err)
			return
		}
		s.applyAndDispatch(changes)

	case strings.HasPrefix(suffix, "POWER"):
		if change, ok := telemetry.ParsePowerTopic(suffix, payload); ok {
			s.applyAndDispatch([]state.Change{change})
		}
	}
}

// routeTele handles a tele/<device>/<suffix> message.
func (b *Broker) routeTele(s *Session, suffix string, payload []byte) {
	switch suffix {
	case SuffixState:
		changes, err := telemetry.ParseState(payload)
		if err != nil {
			b.debug("unparseable tele state", "device", s.device, "error", err)
			return
		}
		s.applyAndDispatch(changes)

	case SuffixSensor:
		changes, err := telemetry.ParseSensor(payload)
		if err != nil {
			b.debug("unparseable tele sensor", "device", s.device, "error", err)
			return
		}
		s.applyAndDispatch(changes)

	case SuffixLWT:
		s.setOnline(string(payload) == PayloadOnline)
	}
}

func (b *Broker) debug(msg string, args ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Debug(msg, args...)
	}
}
