package ws

import (
	"testing"
	"time"
)

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectedClients() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("ConnectedClients() = %d, expected %d", hub.ConnectedClients(), want)
}

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub(nil)

	cl := &client{send: make(chan Event, 4), hub: hub}
	hub.register <- cl
	waitForClients(t, hub, 1)

	welcome := <-cl.send
	if welcome.Type != "connection" {
		t.Errorf("first event type = %q, expected %q", welcome.Type, "connection")
	}

	hub.Broadcast("message_received", map[string]string{"conversation_id": "abc"})
	event := <-cl.send
	if event.Type != "message_received" {
		t.Errorf("broadcast event type = %q, expected %q", event.Type, "message_received")
	}

	hub.unregister <- cl
	waitForClients(t, hub, 0)

	if _, open := <-cl.send; open {
		t.Error("send channel still open after unregister")
	}
}

func TestHubDropsClientWithFullQueue(t *testing.T) {
	hub := NewHub(nil)

	// Unbuffered send: the welcome event cannot be queued, so registration
	// drops the client straight away.
	cl := &client{send: make(chan Event), hub: hub}
	hub.register <- cl

	select {
	case _, open := <-cl.send:
		if open {
			t.Error("expected send channel closed for undeliverable client")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed within deadline")
	}
	waitForClients(t, hub, 0)
}
