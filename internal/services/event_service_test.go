package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/isdelr/taskflow-be/internal/models"
)

func TestEventsRecordedAndPublished(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	p := f.project(t, alice, "A1")
	f.task(t, alice, p.ID, bob.ID)
	ctx := context.Background()

	events, err := f.events.GetRecentEvents(ctx, 0)
	if err != nil {
		t.Fatalf("GetRecentEvents: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[0].Type != "task.create" {
		t.Errorf("expected newest event task.create, got %q", events[0].Type)
	}

	last := f.notifier.sent[len(f.notifier.sent)-1]
	var msg struct {
		Action  string       `json:"action"`
		Payload models.Event `json:"payload"`
	}
	if err := json.Unmarshal(last.message, &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Action != "event" || msg.Payload.TaskID == "" {
		t.Errorf("unexpected published message %s", last.message)
	}
	seen := map[string]bool{}
	for _, id := range last.audience {
		seen[id] = true
	}
	if !seen[alice.ID] || !seen[bob.ID] {
		t.Errorf("expected alice and bob in audience, got %v", last.audience)
	}
}

func TestGetRecentEventsLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.events.Record(ctx, models.Event{Type: "test", Message: "m", ActorID: "a"})
	}

	events, err := f.events.GetRecentEvents(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
}
