package broker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// discoveryFilters are the wildcard subscriptions a discovery round
// listens on. Any device that is online answers the group status
// request on its stat/ topic; LWT and STATE catch devices that happen
// to publish during the window anyway.
var discoveryFilters = []string{
	PrefixTele + "/+/" + SuffixLWT,
	PrefixTele + "/+/" + SuffixState,
	PrefixStat + "/+/STATUS",
}

// discovery collects distinct device topics during one round.
type discovery struct {
	mu    sync.Mutex
	found map[string]struct{}
}

// observe records the device topic of a message that looks like a
// Tasmota device speaking the default topic scheme.
func (d *discovery) observe(prefix, device, suffix string) {
	relevant := (prefix == PrefixTele && (suffix == SuffixLWT || suffix == SuffixState)) ||
		(prefix == PrefixStat && strings.HasPrefix(suffix, "STATUS"))
	if !relevant {
		return
	}
	d.mu.Lock()
	d.found[device] = struct{}{}
	d.mu.Unlock()
}

// topics returns the collected device topics, sorted.
func (d *discovery) topics() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.found))
	for t := range d.found {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// activeDiscovery returns the running round, if any.
func (b *Broker) activeDiscovery() *discovery {
	b.discMu.Lock()
	defer b.discMu.Unlock()
	return b.disc
}

// Discover finds Tasmota devices reachable through the broker.
//
// It subscribes to wildcard availability, state and status topics,
// broadcasts "Status 0" to the tasmotas group topic every device
// subscribes to by default, and collects the distinct device topics
// that answer within the window. The round always terminates when the
// window elapses; it never waits for a fixed device count.
//
// Parameters:
//   - ctx: Cancels the round early; the topics found so far are still
//     returned alongside the context error
//   - window: The collection window (e.g. from config.GetDiscoveryTimeout)
//
// Returns:
//   - []string: Distinct device topics, sorted
//   - error: ErrDiscoveryActive, a wrapped subscribe/publish failure,
//     or the context error on early cancellation
func (b *Broker) Discover(ctx context.Context, window time.Duration) ([]string, error) {
	if !b.IsConnected() {
		return nil, ErrNotConnected
	}

	b.discMu.Lock()
	if b.disc != nil {
		b.discMu.Unlock()
		return nil, ErrDiscoveryActive
	}
	d := &discovery{found: make(map[string]struct{})}
	b.disc = d
	b.discMu.Unlock()

	defer func() {
		b.discMu.Lock()
		b.disc = nil
		b.discMu.Unlock()
		for _, filter := range discoveryFilters {
			if err := b.unsubscribe(filter); err != nil {
				if logger := b.getLogger(); logger != nil {
					logger.Warn("discovery unsubscribe failed", "filter", filter, "error", err)
				}
			}
		}
	}()

	for _, filter := range discoveryFilters {
		if err := b.subscribe(filter); err != nil {
			return nil, err
		}
	}

	// Broadcast a status request so idle devices answer instead of
	// waiting for their next periodic telemetry.
	token := b.client.Publish(CommandTopic(GroupTopic, "Status"), b.qos, false, "0")
	if !token.WaitTimeout(defaultTokenTimeout) {
		return nil, fmt.Errorf("%w: discovery broadcast: timeout after %v", ErrPublishFailed, defaultTokenTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: discovery broadcast: %w", ErrPublishFailed, err)
	}

	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case <-timer.C:
		return d.topics(), nil
	case <-ctx.Done():
		return d.topics(), fmt.Errorf("broker: discovery cancelled: %w", ctx.Err())
	}
}

// DiscoverAndAttach runs a discovery round and attaches every device it
// finds, so callers get working sessions rather than bare topic names.
// Devices already attached keep their existing session. After the
// attachments a State query is broadcast to the group topic; the
// answers land on the fresh sessions' stat/ subscriptions and seed
// their state snapshots.
//
// Parameters:
//   - ctx: Cancels the discovery window early
//   - window: The collection window (e.g. from config.GetDiscoveryTimeout)
//
// Returns:
//   - []*Session: One session per discovered device, in topic order
//   - error: The Discover error, or the first attach failure
func (b *Broker) DiscoverAndAttach(ctx context.Context, window time.Duration) ([]*Session, error) {
	topics, err := b.Discover(ctx, window)
	if err != nil {
		return nil, err
	}

	sessions := make([]*Session, 0, len(topics))
	for _, topic := range topics {
		s, err := b.Attach(topic)
		if errors.Is(err, ErrAlreadyAttached) {
			s = b.session(topic)
		} else if err != nil {
			return sessions, fmt.Errorf("broker: attaching discovered device %q: %w", topic, err)
		}
		sessions = append(sessions, s)
	}

	// Best effort: devices that ignore the broadcast still have a
	// session, just an empty snapshot until their next telemetry.
	if len(sessions) > 0 {
		token := b.client.Publish(CommandTopic(GroupTopic, "State"), b.qos, false, "")
		if token.WaitTimeout(defaultTokenTimeout) && token.Error() != nil {
			if logger := b.getLogger(); logger != nil {
				logger.Warn("initial state broadcast failed", "error", token.Error())
			}
		}
	}
	return sessions, nil
}
