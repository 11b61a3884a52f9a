package websocket

import (
	"testing"
	"time"
)

func newTestClient(h *Hub, userID string, admin bool) *Client {
	return &Client{hub: h, Send: make(chan []byte, 4), UserID: userID, Admin: admin}
}

func receive(t *testing.T, c *Client) (string, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		return string(msg), ok
	case <-time.After(200 * time.Millisecond):
		return "", false
	}
}

func TestHubRoutesToAudienceAndAdmins(t *testing.T) {
	t.Parallel()

	h := NewHub()
	go h.Run()
	defer h.Stop()

	alice := newTestClient(h, "alice", false)
	bob := newTestClient(h, "bob", false)
	admin := newTestClient(h, "root", true)
	for _, c := range []*Client{alice, bob, admin} {
		h.Register <- c
	}

	h.Publish([]string{"alice"}, []byte("hello"))

	if msg, ok := receive(t, alice); !ok || msg != "hello" {
		t.Errorf("alice expected hello, got %q (%v)", msg, ok)
	}
	if msg, ok := receive(t, admin); !ok || msg != "hello" {
		t.Errorf("admin expected hello, got %q (%v)", msg, ok)
	}
	if msg, ok := receive(t, bob); ok {
		t.Errorf("bob must not receive alice's message, got %q", msg)
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	t.Parallel()

	h := NewHub()
	go h.Run()
	defer h.Stop()

	c := newTestClient(h, "alice", false)
	h.Register <- c
	h.Unregister <- c

	select {
	case _, ok := <-c.Send:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	b, err := Encode("event", map[string]string{"type": "task.create"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(b) != `{"action":"event","payload":{"type":"task.create"}}` {
		t.Errorf("unexpected encoding %s", b)
	}
}
