package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
	"github.com/isdelr/taskflow-be/internal/store/sqlitestore"
)

type published struct {
	audience []string
	message  []byte
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []published
}

func (n *fakeNotifier) Publish(audience []string, message []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, published{audience: audience, message: message})
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeRemover struct {
	mu      sync.Mutex
	removed []string
}

func (r *fakeRemover) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, name)
	return nil
}

func (r *fakeRemover) has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.removed {
		if n == name {
			return true
		}
	}
	return false
}

type fixture struct {
	st       *store.Store
	notifier *fakeNotifier
	remover  *fakeRemover
	events   *EventService
	users    *UserService
	projects *ProjectService
	tasks    *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := sqlitestore.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	f := &fixture{st: st, notifier: &fakeNotifier{}, remover: &fakeRemover{}}
	f.events = NewEventService(st.Events, f.notifier, 0)
	f.users = NewUserService(st.Users, f.remover, f.events, 0)
	f.projects = NewProjectService(st, f.events, 0)
	f.projects.retryDelay = 0
	f.tasks = NewTaskService(st, f.events, 0)
	return f
}

func (f *fixture) register(t *testing.T, name, email string) models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return u
}

func (f *fixture) admin(t *testing.T) models.User {
	t.Helper()
	u, err := f.users.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "adminpass")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	return u
}

func (f *fixture) project(t *testing.T, owner models.User, name string) models.ProjectDetail {
	t.Helper()
	p, err := f.projects.CreateProject(context.Background(), owner, models.ProjectInput{Name: name, Description: "desc"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func (f *fixture) task(t *testing.T, creator models.User, projectID, assignee string) models.TaskDetail {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), creator, models.TaskInput{
		Title: "Task", Description: "desc", Project: projectID, AssignedTo: assignee,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func wantField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error on %s, got %v", field, err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Fatalf("expected validation error on %s, got fields %v", field, verr.Fields)
	}
}
