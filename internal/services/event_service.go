package services

import (
	"context"
	"time"

	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
	"github.com/isdelr/taskflow-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// Activity listing bounds.
const (
	DefaultEventLimit = 20
	MaxEventLimit     = 100
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	Record(ctx context.Context, event models.Event, recipients ...string)
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventService records the activity log and pushes each entry to the users
// it concerns.
type EventService struct {
	events   store.EventStore
	notifier Notifier
	timeout  time.Duration
}

// NewEventService creates a new EventService. notifier may be nil.
func NewEventService(events store.EventStore, notifier Notifier, timeout time.Duration) *EventService {
	return &EventService{events: events, notifier: notifier, timeout: timeout}
}

// Record stores event and publishes it to recipients. Activity is best
// effort: failures are logged and never surface to the caller.
func (s *EventService) Record(ctx context.Context, event models.Event, recipients ...string) {
	if event.Level == "" {
		event.Level = models.LevelInfo
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.events.Create(ctx, event); err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to record event")
	}

	if s.notifier == nil {
		return
	}
	msg, err := websocket.Encode("event", event)
	if err != nil {
		log.Error().Err(err).Msg("Error marshalling event for broadcast")
		return
	}
	s.notifier.Publish(recipients, msg)
}

// GetRecentEvents retrieves the most recent events, clamping limit to
// [1, MaxEventLimit]. A non-positive limit selects DefaultEventLimit.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	switch {
	case limit <= 0:
		limit = DefaultEventLimit
	case limit > MaxEventLimit:
		limit = MaxEventLimit
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	events, err := s.events.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}
