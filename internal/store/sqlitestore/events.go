package sqlitestore

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/isdelr/taskflow-be/internal/models"
)

// EventStore persists the activity log in the events table.
type EventStore struct {
	db *sql.DB
}

// Create logs a new event.
func (s *EventStore) Create(ctx context.Context, e models.Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = nowUTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, actor_id, project_id, task_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Type, e.Level, e.Message, e.ActorID, nullString(e.ProjectID), nullString(e.TaskID), e.CreatedAt)
	return err
}

// Recent retrieves the most recent events, newest first.
func (s *EventStore) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, actor_id, project_id, task_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		var projectID, taskID sql.NullString
		if err := rows.Scan(&e.ID, &e.Type, &e.Level, &e.Message, &e.ActorID, &projectID, &taskID, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ProjectID = projectID.String
		e.TaskID = taskID.String
		events = append(events, e)
	}
	return events, rows.Err()
}
