package broker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDiscoverCollectsDistinctTopics(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	// Devices answer the broadcast during the window.
	client.onPublish = func(topic, payload string) {
		if topic != "cmnd/tasmotas/Status" || payload != "0" {
			return
		}
		b.handleMessage("stat/garden-light/STATUS", []byte(`{}`))
		b.handleMessage("stat/washer/STATUS", []byte(`{}`))
		b.handleMessage("stat/washer/STATUS11", []byte(`{}`))
		b.handleMessage("tele/porch/LWT", []byte(PayloadOnline))
		b.handleMessage("tele/porch/SENSOR", []byte(`{}`)) // not a discovery signal
	}

	topics, err := b.Discover(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"garden-light", "porch", "washer"}
	if len(topics) != len(want) {
		t.Fatalf("topics = %v, want %v", topics, want)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topics = %v, want %v", topics, want)
		}
	}

	// Round complete: filters released, no active collector.
	if b.activeDiscovery() != nil {
		t.Error("discovery still marked active after the window")
	}
	client.mu.Lock()
	unsubs := len(client.unsubscribed)
	client.mu.Unlock()
	if unsubs != len(discoveryFilters) {
		t.Errorf("unsubscribed %d filters, want %d", unsubs, len(discoveryFilters))
	}
}

func TestDiscoverBroadcastsStatusRequest(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	if _, err := b.Discover(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("Discover: %v", err)
	}

	pubs := client.publishes()
	if len(pubs) != 1 || pubs[0].topic != "cmnd/tasmotas/Status" || pubs[0].payload != "0" {
		t.Errorf("published %+v, want Status 0 broadcast to the group topic", pubs)
	}
}

func TestDiscoverRejectsConcurrentRounds(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Discover(context.Background(), 200*time.Millisecond)
	}()

	time.Sleep(50 * time.Millisecond)
	if _, err := b.Discover(context.Background(), time.Millisecond); !errors.Is(err, ErrDiscoveryActive) {
		t.Errorf("error = %v, want ErrDiscoveryActive", err)
	}
	<-done
}

func TestDiscoverAndAttachReturnsSessions(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	client.onPublish = func(topic, payload string) {
		if topic != "cmnd/tasmotas/Status" || payload != "0" {
			return
		}
		b.handleMessage("tele/garden-light/LWT", []byte(PayloadOnline))
		b.handleMessage("tele/porch/LWT", []byte(PayloadOnline))
	}

	sessions, err := b.DiscoverAndAttach(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("DiscoverAndAttach: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	want := []string{"garden-light", "porch"}
	for i, s := range sessions {
		if s.Topic() != want[i] {
			t.Errorf("session %d topic = %q, want %q", i, s.Topic(), want[i])
		}
	}

	// The devices are attached: their telemetry now routes to state.
	b.handleMessage("tele/porch/LWT", []byte(PayloadOnline))
	if !sessions[1].Online() {
		t.Error("attached session did not track LWT")
	}

	// An initial state query went out to the group after attaching.
	var stateBroadcast bool
	for _, pub := range client.publishes() {
		if pub.topic == "cmnd/tasmotas/State" {
			stateBroadcast = true
		}
	}
	if !stateBroadcast {
		t.Error("no group State broadcast after attaching")
	}
}

func TestDiscoverAndAttachReusesExistingSessions(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)
	existing := attach(t, b, "garden-light")

	client.onPublish = func(topic, payload string) {
		if topic == "cmnd/tasmotas/Status" {
			b.handleMessage("stat/garden-light/STATUS", []byte(`{}`))
		}
	}

	sessions, err := b.DiscoverAndAttach(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("DiscoverAndAttach: %v", err)
	}
	if len(sessions) != 1 || sessions[0] != existing {
		t.Errorf("sessions = %v, want the already-attached session back", sessions)
	}
}

func TestDiscoverHonoursContextCancellation(t *testing.T) {
	client := newFakeClient()
	b := newTestBroker(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := b.Discover(ctx, 10*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled discovery should return promptly")
	}
}
