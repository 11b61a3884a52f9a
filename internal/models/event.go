package models

import "time"

// Event levels.
const (
	LevelInfo = "info"
	LevelWarn = "warn"
)

// Event represents a recorded action on a user, project or task.
type Event struct {
	ID        string    `json:"id" bson:"_id"`
	Type      string    `json:"type" bson:"type"`   // e.g., "project.create", "task.delete"
	Level     string    `json:"level" bson:"level"` // "info" or "warn"
	Message   string    `json:"message" bson:"message"`
	ActorID   string    `json:"actorId" bson:"actorId"`
	ProjectID string    `json:"projectId,omitempty" bson:"projectId,omitempty"`
	TaskID    string    `json:"taskId,omitempty" bson:"taskId,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
