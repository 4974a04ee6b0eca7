package broker

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tasgo-io/tasgo/config"
)

// mqttClient is the slice of the paho client the broker uses. Narrowing
// the dependency keeps the routing and correlation logic testable
// without a live broker.
type mqttClient interface {
	Connect() pahomqtt.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token
	Unsubscribe(topics ...string) pahomqtt.Token
	IsConnected() bool
}

// Logger is the logging interface the broker uses. Compatible with
// logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Broker shares one MQTT connection between any number of device
// sessions.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Sessions are independent; commands to different devices proceed
//     in parallel.
type Broker struct {
	client mqttClient
	cfg    config.MQTTConfig
	qos    byte

	// sessions maps device topic to its session, and doubles as the
	// subscription inventory restored on reconnect.
	sessions map[string]*Session
	sessMu   sync.RWMutex

	// connected tracks current connection state; everConnected
	// distinguishes the first connect from reconnects.
	connected     bool
	everConnected bool
	connMu        sync.RWMutex

	// disc is the active discovery round, if any.
	disc   *discovery
	discMu sync.Mutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Connect establishes the shared connection to the MQTT broker.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS)
//  2. Sets up auto-reconnect with exponential backoff
//  3. Attempts the initial connection with timeout
//
// Parameters:
//   - cfg: MQTT configuration
//
// Returns:
//   - *Broker: Connected broker ready for Attach
//   - error: If the initial connection fails within the timeout
func Connect(cfg config.MQTTConfig) (*Broker, error) {
	b := &Broker{
		cfg:      cfg,
		qos:      byte(cfg.QoS),
		sessions: make(map[string]*Session),
	}

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		b.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		b.handleDisconnect(err)
	})

	b.client = pahomqtt.NewClient(opts)
	token := b.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback runs asynchronously; mark connected here so
	// Attach works immediately after Connect returns.
	b.connMu.Lock()
	b.connected = true
	b.everConnected = true
	b.connMu.Unlock()

	return b, nil
}

// handleConnect runs on every (re)connection.
//
// Order matters: every attached device's subscriptions are restored
// first, then reconnected callbacks fire. A callback that immediately
// sends a command therefore finds its reply route in place.
func (b *Broker) handleConnect() {
	b.connMu.Lock()
	reconnect := b.everConnected
	b.connected = true
	b.everConnected = true
	b.connMu.Unlock()

	if !reconnect {
		return
	}

	b.restoreSubscriptions()

	for _, s := range b.snapshotSessions() {
		s.registry.DispatchReconnected()
	}
}

// handleDisconnect runs when the connection is lost. Auto-reconnect is
// handled by the underlying client; this only flips state and notifies.
func (b *Broker) handleDisconnect(err error) {
	b.connMu.Lock()
	b.connected = false
	b.connMu.Unlock()

	if logger := b.getLogger(); logger != nil {
		logger.Warn("connection lost", "error", err)
	}

	for _, s := range b.snapshotSessions() {
		s.registry.DispatchDisconnected()
	}
}

// restoreSubscriptions re-subscribes every attached session's filters
// after a reconnect. Errors are logged, not returned; the next reconnect
// retries.
func (b *Broker) restoreSubscriptions() {
	for _, s := range b.snapshotSessions() {
		for _, filter := range s.filters() {
			b.client.Subscribe(filter, b.qos, b.pahoHandler())
		}
	}

	b.discMu.Lock()
	active := b.disc
	b.discMu.Unlock()
	if active != nil {
		for _, filter := range discoveryFilters {
			b.client.Subscribe(filter, b.qos, b.pahoHandler())
		}
	}
}

// Attach registers a device by its MQTT topic and returns its session.
//
// Attaching subscribes to the device's stat/ and tele/ topics; from
// that point its telemetry feeds the session's state and callbacks, and
// commands can be sent through the session.
//
// Parameters:
//   - deviceTopic: The device's %topic% (a single literal level)
//
// Returns:
//   - *Session: The device's command/state session
//   - error: ErrInvalidTopic, ErrAlreadyAttached, ErrNotConnected, or a
//     wrapped subscribe failure
func (b *Broker) Attach(deviceTopic string) (*Session, error) {
	if !ValidDeviceTopic(deviceTopic) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, deviceTopic)
	}
	if !b.IsConnected() {
		return nil, ErrNotConnected
	}

	b.sessMu.Lock()
	if _, exists := b.sessions[deviceTopic]; exists {
		b.sessMu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrAlreadyAttached, deviceTopic)
	}
	s := newSession(b, deviceTopic)
	b.sessions[deviceTopic] = s
	b.sessMu.Unlock()

	for _, filter := range s.filters() {
		if err := b.subscribe(filter); err != nil {
			b.removeSession(s)
			return nil, err
		}
	}

	return s, nil
}

// detach tears down a session: route removed, filters unsubscribed,
// pending waits released with ErrConnectionClosed.
func (b *Broker) detach(s *Session) error {
	if !b.removeSession(s) {
		return nil // already detached
	}
	s.shutdown()

	var firstErr error
	if b.IsConnected() {
		for _, filter := range s.filters() {
			if err := b.unsubscribe(filter); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// removeSession drops s from the session map if still present.
func (b *Broker) removeSession(s *Session) bool {
	b.sessMu.Lock()
	defer b.sessMu.Unlock()
	current, ok := b.sessions[s.device]
	if !ok || current != s {
		return false
	}
	delete(b.sessions, s.device)
	return true
}

// snapshotSessions copies the session set for iteration without holding
// the lock.
func (b *Broker) snapshotSessions() []*Session {
	b.sessMu.RLock()
	defer b.sessMu.RUnlock()
	out := make([]*Session, 0, len(b.sessions))
	for _, s := range b.sessions {
		out = append(out, s)
	}
	return out
}

// session looks up the session for a device topic.
func (b *Broker) session(device string) *Session {
	b.sessMu.RLock()
	defer b.sessMu.RUnlock()
	return b.sessions[device]
}

// Sessions returns the currently attached device topics.
func (b *Broker) Sessions() []string {
	b.sessMu.RLock()
	defer b.sessMu.RUnlock()
	out := make([]string, 0, len(b.sessions))
	for topic := range b.sessions {
		out = append(out, topic)
	}
	return out
}

// IsConnected returns the current connection state.
func (b *Broker) IsConnected() bool {
	b.connMu.RLock()
	defer b.connMu.RUnlock()
	return b.connected && b.client.IsConnected()
}

// Shutdown detaches every session and closes the connection.
//
// Pending command waits fail with ErrConnectionClosed. The disconnect
// allows a short quiesce period for in-flight publishes.
func (b *Broker) Shutdown() error {
	for _, s := range b.snapshotSessions() {
		if err := b.detach(s); err != nil {
			if logger := b.getLogger(); logger != nil {
				logger.Warn("detach during shutdown failed", "device", s.device, "error", err)
			}
		}
	}

	b.client.Disconnect(defaultDisconnectQuiesce)

	b.connMu.Lock()
	b.connected = false
	b.connMu.Unlock()

	return nil
}

// SetLogger sets a logger for routing and connection diagnostics.
// If not set, the broker is silent.
func (b *Broker) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

func (b *Broker) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

// subscribe adds a filter on the shared connection, waiting for the
// broker's acknowledgement.
func (b *Broker) subscribe(filter string) error {
	token := b.client.Subscribe(filter, b.qos, b.pahoHandler())
	if !token.WaitTimeout(defaultTokenTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrSubscribeFailed, filter, defaultTokenTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, filter, err)
	}
	return nil
}

// unsubscribe removes a filter from the shared connection.
func (b *Broker) unsubscribe(filter string) error {
	token := b.client.Unsubscribe(filter)
	if !token.WaitTimeout(defaultTokenTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrUnsubscribeFailed, filter, defaultTokenTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnsubscribeFailed, filter, err)
	}
	return nil
}

// pahoHandler adapts the router to paho's callback signature, with
// panic recovery so a misbehaving user callback cannot kill the
// client's read loop.
func (b *Broker) pahoHandler() pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := b.getLogger(); logger != nil {
					logger.Error("message handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()
		b.handleMessage(msg.Topic(), msg.Payload())
	}
}
