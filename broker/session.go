package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tasgo-io/tasgo/command"
	"github.com/tasgo-io/tasgo/protocol"
	"github.com/tasgo-io/tasgo/state"
	"github.com/tasgo-io/tasgo/subscription"
)

// reply is one stat message delivered to a session's reply slot.
type reply struct {
	suffix  string
	payload []byte
}

// Session is one device's view of the shared connection. It implements
// protocol.Protocol over MQTT and owns the device's aggregated state
// and callback registry.
//
// Commands through one session are serialised: the session publishes,
// then waits for the correlated reply before the next command may
// start. Sessions of different devices do not contend.
type Session struct {
	broker *Broker
	device string

	// replies is the private slot stat messages are delivered to. It is
	// drained immediately before each publish so a stale reply from an
	// earlier exchange cannot be attributed to a new command.
	replies chan reply

	// done releases pending collection waits when the session closes.
	done     chan struct{}
	doneOnce sync.Once

	// sendMu serialises the publish-then-collect cycle.
	sendMu sync.Mutex

	registry *subscription.Registry

	st     *state.DeviceState
	stMu   sync.Mutex
	online bool
}

func newSession(b *Broker, device string) *Session {
	return &Session{
		broker:   b,
		device:   device,
		replies:  make(chan reply, replyBufferSize),
		done:     make(chan struct{}),
		registry: subscription.NewRegistry(),
		st:       state.New(),
	}
}

// Topic returns the device's MQTT topic.
func (s *Session) Topic() string {
	return s.device
}

// Registry returns the device's callback registry.
func (s *Session) Registry() *subscription.Registry {
	return s.registry
}

// StateSnapshot returns an independent copy of the device's aggregated
// state.
func (s *Session) StateSnapshot() *state.DeviceState {
	s.stMu.Lock()
	defer s.stMu.Unlock()
	return s.st.Snapshot()
}

// Online reports the device's availability from its last LWT message.
func (s *Session) Online() bool {
	s.stMu.Lock()
	defer s.stMu.Unlock()
	return s.online
}

// filters returns the subscription filters this session needs.
func (s *Session) filters() []string {
	return []string{StatFilter(s.device), TeleFilter(s.device)}
}

// closed reports whether the session has been shut down.
func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// shutdown releases pending waits. Called by the broker on detach.
func (s *Session) shutdown() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Close detaches the session from the broker: subscriptions are
// removed and any pending command wait fails with ErrConnectionClosed.
func (s *Session) Close() error {
	return s.broker.detach(s)
}

// SendCommand implements protocol.Protocol.
//
// The cycle is: serialise on the session, drain stale replies, publish
// to cmnd/<device>/<Name>, then collect per the command's ResponseSpec.
// Publishing never waits for a reply; only collection does, and every
// wait is bounded by the command timeout, the aggregation window, or
// ctx, whichever ends first.
func (s *Session) SendCommand(ctx context.Context, cmd command.Command) (*protocol.CommandResponse, error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.closed() {
		return nil, ErrSessionClosed
	}
	if !s.broker.IsConnected() {
		return nil, ErrNotConnected
	}

	s.drainReplies()

	if err := s.publish(cmd); err != nil {
		return nil, err
	}

	line := command.RequestString(cmd)
	spec := command.SpecFor(cmd)
	if spec.Mode == command.ResponseAggregated {
		return s.collectAggregated(ctx, line, spec)
	}
	return s.collectSingle(ctx, line)
}

// SendRaw implements protocol.Protocol.
func (s *Session) SendRaw(ctx context.Context, line string) (*protocol.CommandResponse, error) {
	cmd, err := command.RawLine(line)
	if err != nil {
		return nil, err
	}
	return s.SendCommand(ctx, cmd)
}

// publish sends the command message, waiting only for the broker's
// acknowledgement, never for the device's reply.
func (s *Session) publish(cmd command.Command) error {
	topic := CommandTopic(s.device, command.TopicSuffix(cmd))
	payload := command.PublishPayload(cmd)

	token := s.broker.client.Publish(topic, s.broker.qos, false, payload)
	if !token.WaitTimeout(defaultTokenTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrPublishFailed, topic, defaultTokenTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// drainReplies discards buffered replies from earlier exchanges.
func (s *Session) drainReplies() {
	for {
		select {
		case <-s.replies:
		default:
			return
		}
	}
}

// deliverReply places a stat message in the reply slot without blocking
// the router. A full slot means no send is waiting; the message is
// dropped and the next send's drain would have discarded it anyway.
func (s *Session) deliverReply(suffix string, payload []byte, logger Logger) {
	if s.closed() {
		return
	}
	select {
	case s.replies <- reply{suffix: suffix, payload: payload}:
	default:
		if logger != nil {
			logger.Debug("reply slot full, dropping stat message",
				"device", s.device,
				"suffix", suffix,
			)
		}
	}
}

// collectSingle waits for the first stat message after the publish.
func (s *Session) collectSingle(ctx context.Context, line string) (*protocol.CommandResponse, error) {
	timeout := s.broker.cfg.GetCommandTimeout()
	if timeout <= 0 {
		timeout = defaultTokenTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-s.replies:
		return protocol.NewResponse(line, r.payload), nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: no reply to %q within %v", protocol.ErrTimeout, line, timeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", protocol.ErrTimeout, ctx.Err())
	case <-s.done:
		return nil, fmt.Errorf("%w: session detached", protocol.ErrConnectionClosed)
	}
}

// collectAggregated gathers the expected fragments until complete or
// the window closes.
//
// Zero fragments is a timeout. A partial set is returned as a merged
// response together with an error wrapping protocol.ErrPartialAggregate,
// so callers get both the data that arrived and the signal that some
// did not.
func (s *Session) collectAggregated(ctx context.Context, line string, spec command.ResponseSpec) (*protocol.CommandResponse, error) {
	expected := make(map[string]bool, len(spec.Expected))
	for _, suffix := range spec.Expected {
		expected[suffix] = true
	}

	fragments := make(map[string][]byte, len(spec.Expected))
	var order []string

	window := spec.Timeout
	if window <= 0 {
		window = defaultTokenTimeout
	}
	timer := time.NewTimer(window)
	defer timer.Stop()

collect:
	for len(fragments) < len(expected) {
		select {
		case r := <-s.replies:
			if !expected[r.suffix] {
				continue // unrelated stat traffic, not part of this reply
			}
			if _, dup := fragments[r.suffix]; dup {
				continue
			}
			fragments[r.suffix] = r.payload
			order = append(order, r.suffix)
		case <-timer.C:
			break collect
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", protocol.ErrTimeout, ctx.Err())
		case <-s.done:
			return nil, fmt.Errorf("%w: session detached", protocol.ErrConnectionClosed)
		}
	}

	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: no fragments for %q within %v", protocol.ErrTimeout, line, window)
	}

	var missing []string
	for _, suffix := range spec.Expected {
		if _, ok := fragments[suffix]; !ok {
			missing = append(missing, suffix)
		}
	}

	// The response may add received-but-garbled fragments to Missing,
	// so the partial decision reads back from it.
	resp := protocol.NewAggregatedResponse(line, fragments, order, missing)
	if resp.Partial() {
		return resp, fmt.Errorf("%w: %q missing %d of %d fragments",
			protocol.ErrPartialAggregate, line, len(resp.Missing()), len(spec.Expected))
	}
	return resp, nil
}

// applyAndDispatch folds parsed changes into the state and notifies
// callbacks of the ones that moved it.
func (s *Session) applyAndDispatch(changes []state.Change) {
	if len(changes) == 0 {
		return
	}
	s.stMu.Lock()
	applied := s.st.ApplyAll(changes)
	s.stMu.Unlock()

	for _, c := range applied {
		s.registry.DispatchChange(c)
	}
}

// setOnline records an LWT transition and fires the matching
// connectivity callbacks. Repeated LWT messages with the same value
// (retained replays) do not re-fire.
func (s *Session) setOnline(online bool) {
	s.stMu.Lock()
	changed := s.online != online
	s.online = online
	s.stMu.Unlock()

	if !changed {
		return
	}
	if online {
		s.registry.DispatchConnected()
	} else {
		s.registry.DispatchDisconnected()
	}
}
