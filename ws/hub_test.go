package ws

import (
	"encoding/json"
	"testing"

	"mediahub/chat-center/models"
	"mediahub/chat-center/utils"
)

func TestHubBroadcast(t *testing.T) {
	logger := utils.NewDiscardLogger()
	hub := NewHub(logger)

	alice := &Client{send: make(chan []byte, 1), logger: logger}
	bob := &Client{send: make(chan []byte, 1), logger: logger}

	hub.Register(alice)
	hub.Register(bob)

	msg := models.Message{ID: 1716000000000, Username: "alice", Content: "hi", Time: "2025-06-01 12:00:00", Type: models.MessageTypeText}
	hub.Broadcast(msg)

	for _, c := range []*Client{alice, bob} {
		select {
		case data := <-c.send:
			var got models.Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if got != msg {
				t.Fatalf("expected %+v, got %+v", msg, got)
			}
		default:
			t.Fatalf("client did not receive the broadcast")
		}
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	logger := utils.NewDiscardLogger()
	hub := NewHub(logger)

	c := &Client{send: make(chan []byte, 1), logger: logger}
	hub.Register(c)
	hub.Unregister(c)

	hub.Broadcast(models.Message{ID: 1, Username: "a", Content: "b", Type: models.MessageTypeText})

	select {
	case <-c.send:
		t.Fatalf("unregistered client should not receive messages")
	default:
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	logger := utils.NewDiscardLogger()
	c := &Client{send: make(chan []byte, 1), logger: logger}

	c.Enqueue([]byte("one"))
	c.Enqueue([]byte("two")) // buffer full, must not block

	if got := string(<-c.send); got != "one" {
		t.Fatalf("expected first payload, got %q", got)
	}
	select {
	case <-c.send:
		t.Fatalf("second payload should have been dropped")
	default:
	}
}
