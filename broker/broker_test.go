package broker

import (
	"errors"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tasgo-io/tasgo/config"
)

// fakeToken is an immediately-complete paho token.
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

// fakeClient records the calls the broker makes against the shared
// connection and lets tests inject behaviour at publish time.
type fakeClient struct {
	mu           sync.Mutex
	subscribed   []string
	unsubscribed []string
	published    []publishedMsg

	// onPublish runs synchronously inside Publish, before the token is
	// returned. Tests use it to deliver the device's reply.
	onPublish func(topic string, payload string)

	// onSubscribe runs synchronously inside Subscribe, so tests can
	// record subscribe calls relative to other events.
	onSubscribe func(topic string)

	subscribeErr error
	publishErr   error
	connected    bool
}

type publishedMsg struct {
	topic   string
	payload string
}

func newFakeClient() *fakeClient {
	return &fakeClient{connected: true}
}

func (c *fakeClient) Connect() pahomqtt.Token { return &fakeToken{} }
func (c *fakeClient) Disconnect(uint)         {}
func (c *fakeClient) IsConnected() bool       { return c.connected }

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) pahomqtt.Token {
	body, _ := payload.(string)
	c.mu.Lock()
	c.published = append(c.published, publishedMsg{topic: topic, payload: body})
	hook := c.onPublish
	c.mu.Unlock()
	if c.publishErr != nil {
		return &fakeToken{err: c.publishErr}
	}
	if hook != nil {
		hook(topic, body)
	}
	return &fakeToken{}
}

func (c *fakeClient) Subscribe(topic string, _ byte, _ pahomqtt.MessageHandler) pahomqtt.Token {
	c.mu.Lock()
	c.subscribed = append(c.subscribed, topic)
	hook := c.onSubscribe
	c.mu.Unlock()
	if c.subscribeErr != nil {
		return &fakeToken{err: c.subscribeErr}
	}
	if hook != nil {
		hook(topic)
	}
	return &fakeToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) pahomqtt.Token {
	c.mu.Lock()
	c.unsubscribed = append(c.unsubscribed, topics...)
	c.mu.Unlock()
	return &fakeToken{}
}

func (c *fakeClient) subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.subscribed...)
}

func (c *fakeClient) publishes() []publishedMsg {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]publishedMsg(nil), c.published...)
}

// newTestBroker wires a broker directly onto a fake client, skipping
// the network connect.
func newTestBroker(client mqttClient) *Broker {
	b := &Broker{
		client: client,
		cfg: config.MQTTConfig{
			QoS:            1,
			CommandTimeout: 1,
		},
		qos:      1,
		sessions: make(map[string]*Session),
	}
	b.connected = true
	b.everConnected = true
	return b
}

func TestAttachSubscribesDeviceFilters(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	s, err := b.Attach("garden-light")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer s.Close()

	subs := client.subscriptions()
	want := map[string]bool{
		"stat/garden-light/+": true,
		"tele/garden-light/+": true,
	}
	for _, topic := range subs {
		delete(want, topic)
	}
	if len(want) != 0 {
		t.Errorf("missing subscriptions: %v (got %v)", want, subs)
	}
}

func TestAttachRejectsDuplicatesAndBadTopics(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	if _, err := b.Attach("dev"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if _, err := b.Attach("dev"); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("duplicate attach error = %v, want ErrAlreadyAttached", err)
	}

	for _, topic := range []string{"", "a/b", "a+", "a#"} {
		if _, err := b.Attach(topic); !errors.Is(err, ErrInvalidTopic) {
			t.Errorf("Attach(%q) error = %v, want ErrInvalidTopic", topic, err)
		}
	}
}

func TestDetachUnsubscribesAndFreesTopic(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	s, err := b.Attach("dev")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	client.mu.Lock()
	unsubs := append([]string(nil), client.unsubscribed...)
	client.mu.Unlock()
	if len(unsubs) != 2 {
		t.Errorf("unsubscribed %v, want both device filters", unsubs)
	}

	// The topic is reusable after detach.
	if _, err := b.Attach("dev"); err != nil {
		t.Errorf("re-Attach after Close: %v", err)
	}

	// Closing twice is harmless.
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestReconnectRestoresSubscriptionsBeforeCallbacks(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	s, err := b.Attach("dev")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	// Record subscribes and the callback into one log so the
	// interleaving is observable, not assumed.
	var mu sync.Mutex
	var events []string
	client.mu.Lock()
	client.subscribed = nil
	client.onSubscribe = func(topic string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, "subscribe:"+topic)
	}
	client.mu.Unlock()

	s.Registry().OnReconnected(func() {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, "callback")
	})

	b.handleDisconnect(nil)
	b.handleConnect()

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 3 {
		t.Fatalf("events = %v, want two subscribes then the callback", events)
	}
	if events[2] != "callback" {
		t.Fatalf("events = %v, the callback must come after both resubscribes", events)
	}
	restored := map[string]bool{}
	for _, e := range events[:2] {
		restored[e] = true
	}
	if !restored["subscribe:stat/dev/+"] || !restored["subscribe:tele/dev/+"] {
		t.Errorf("events = %v, want both device filters restored first", events)
	}
}

func TestFirstConnectDoesNotFireReconnected(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)
	b.everConnected = false

	fired := false
	s, _ := b.Attach("dev")
	s.Registry().OnReconnected(func() { fired = true })

	b.handleConnect()
	if fired {
		t.Error("reconnected callback fired on first connect")
	}
}

func TestConnectionLostNotifiesSessions(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	s, _ := b.Attach("dev")
	var disconnects int
	s.Registry().OnDisconnected(func() { disconnects++ })

	b.handleDisconnect(nil)
	if disconnects != 1 {
		t.Errorf("disconnect callbacks = %d, want 1", disconnects)
	}
}
