package mongostore

import (
	"context"

	"github.com/isdelr/taskflow-be/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventStore persists the activity log in the events collection.
type EventStore struct {
	coll *mongo.Collection
}

// Create logs a new event.
func (s *EventStore) Create(ctx context.Context, e models.Event) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = nowUTC()
	}
	_, err := s.coll.InsertOne(ctx, e)
	return err
}

// Recent retrieves the most recent events, newest first.
func (s *EventStore) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return findAll[models.Event](ctx, s.coll, bson.M{}, opts)
}
