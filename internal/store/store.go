// Package store declares the repositories the services persist through.
// Backends live in sqlitestore and mongostore.
package store

import (
	"context"

	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/models"
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	// FindByEmail returns the user including its password hash.
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Find(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
	Delete(ctx context.Context, id string) error
	// AvatarsInUse lists every avatar file name referenced by a user.
	AvatarsInUse(ctx context.Context) ([]string, error)
}

// ProjectFilter narrows a project listing. Zero value matches everything.
type ProjectFilter struct {
	CreatedBy string
}

// ProjectStore persists projects.
type ProjectStore interface {
	Create(ctx context.Context, p models.Project) (models.Project, error)
	FindByID(ctx context.Context, id string) (models.Project, error)
	Find(ctx context.Context, filter ProjectFilter) ([]models.Project, error)
	Update(ctx context.Context, p models.Project) (models.Project, error)
	Delete(ctx context.Context, id string) error
}

// TaskFilter narrows a task listing. Zero value matches everything.
type TaskFilter struct {
	// Project restricts to tasks of one project.
	Project string
	// VisibleTo restricts to tasks assigned to this user or belonging to a
	// project this user created.
	VisibleTo string
}

// TaskStore persists tasks.
type TaskStore interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	FindByID(ctx context.Context, id string) (models.Task, error)
	Find(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, t models.Task) (models.Task, error)
	Delete(ctx context.Context, id string) error
	// DeleteByProject removes every task of a project. Safe to repeat.
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

// EventStore persists the activity log.
type EventStore interface {
	Create(ctx context.Context, e models.Event) error
	Recent(ctx context.Context, limit int) ([]models.Event, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users    UserStore
	Projects ProjectStore
	Tasks    TaskStore
	Events   EventStore

	// Ping checks backend connectivity.
	Ping func(ctx context.Context) error
	// Close releases the backend connection.
	Close func() error
}

// Not-found errors shared by the backends.
var (
	ErrUserNotFound    = apperr.NotFound("Pengguna tidak ditemukan")
	ErrProjectNotFound = apperr.NotFound("Proyek tidak ditemukan")
	ErrTaskNotFound    = apperr.NotFound("Tugas tidak ditemukan")
)

// ErrEmailTaken is returned when a write would duplicate a user's email.
func ErrEmailTaken() error {
	return apperr.Invalid("email", "Email sudah terdaftar")
}
