package services

import (
	"context"
	"errors"
	"testing"

	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
)

func TestProjectListingByRole(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.admin(t)
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	f.project(t, alice, "A1")
	f.project(t, alice, "A2")
	f.project(t, bob, "B1")
	ctx := context.Background()

	own, err := f.projects.GetProjects(ctx, alice)
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(own) != 2 {
		t.Errorf("expected 2 projects for alice, got %d", len(own))
	}
	for _, p := range own {
		if p.CreatedBy == nil || p.CreatedBy.ID != alice.ID || p.CreatedBy.Email != alice.Email {
			t.Errorf("expected populated owner alice, got %+v", p.CreatedBy)
		}
	}

	all, err := f.projects.GetProjects(ctx, admin)
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected admin to see 3 projects, got %d", len(all))
	}
}

func TestProjectAccess(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.admin(t)
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	p := f.project(t, alice, "A1")
	ctx := context.Background()

	_, err := f.projects.GetProject(ctx, bob, p.ID)
	wantKind(t, err, apperr.ErrForbidden)
	_, err = f.projects.UpdateProject(ctx, bob, p.ID, models.ProjectPatch{})
	wantKind(t, err, apperr.ErrForbidden)
	wantKind(t, f.projects.DeleteProject(ctx, bob, p.ID), apperr.ErrForbidden)

	if _, err := f.projects.GetProject(ctx, admin, p.ID); err != nil {
		t.Errorf("admin should read any project, got %v", err)
	}
	_, err = f.projects.GetProject(ctx, admin, "missing")
	wantKind(t, err, apperr.ErrNotFound)
}

func TestUpdateProjectChangesOnlySuppliedFields(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")
	p := f.project(t, alice, "A1")

	status := models.ProjectCompleted
	updated, err := f.projects.UpdateProject(context.Background(), alice, p.ID, models.ProjectPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.Status != models.ProjectCompleted {
		t.Errorf("expected completed, got %q", updated.Status)
	}
	if updated.Name != p.Name || updated.Description != p.Description || !updated.StartDate.Equal(p.StartDate) {
		t.Errorf("unexpected changes: before %+v after %+v", p.Project, updated.Project)
	}
	if updated.CreatedBy == nil || updated.CreatedBy.ID != alice.ID {
		t.Errorf("owner changed: %+v", updated.CreatedBy)
	}

	bad := models.ProjectStatus("archived")
	_, err = f.projects.UpdateProject(context.Background(), alice, p.ID, models.ProjectPatch{Status: &bad})
	wantField(t, err, "status")
}

func TestGetProjectIncludesTasks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	p := f.project(t, alice, "A1")
	f.task(t, alice, p.ID, bob.ID)
	f.task(t, alice, p.ID, alice.ID)

	got, err := f.projects.GetProject(context.Background(), alice, p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Project.ID != p.ID || len(got.Tasks) != 2 {
		t.Fatalf("unexpected result: project %s tasks %d", got.Project.ID, len(got.Tasks))
	}
	for _, task := range got.Tasks {
		if task.AssignedTo == nil || task.Project == nil || task.Project.Name != "A1" {
			t.Errorf("expected populated task, got %+v", task)
		}
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")
	p := f.project(t, alice, "A1")
	other := f.project(t, alice, "A2")
	for i := 0; i < 3; i++ {
		f.task(t, alice, p.ID, alice.ID)
	}
	kept := f.task(t, alice, other.ID, alice.ID)
	ctx := context.Background()

	if err := f.projects.DeleteProject(ctx, alice, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := f.st.Projects.FindByID(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected project gone, got %v", err)
	}
	remaining, err := f.st.Tasks.Find(ctx, store.TaskFilter{Project: p.ID})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected no tasks left, got %d", len(remaining))
	}
	if _, err := f.st.Tasks.FindByID(ctx, kept.ID); err != nil {
		t.Errorf("task of another project was removed: %v", err)
	}
}

// flakyTasks fails DeleteByProject a fixed number of times.
type flakyTasks struct {
	store.TaskStore
	failures int
	calls    int
}

func (f *flakyTasks) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, errors.New("connection reset")
	}
	return f.TaskStore.DeleteByProject(ctx, projectID)
}

func TestDeleteProjectRetriesTaskRemoval(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")
	p := f.project(t, alice, "A1")
	f.task(t, alice, p.ID, alice.ID)

	flaky := &flakyTasks{TaskStore: f.st.Tasks, failures: cascadeAttempts - 1}
	st := *f.st
	st.Tasks = flaky
	svc := NewProjectService(&st, f.events, 0)
	svc.retryDelay = 0

	if err := svc.DeleteProject(context.Background(), alice, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if flaky.calls != cascadeAttempts {
		t.Errorf("expected %d attempts, got %d", cascadeAttempts, flaky.calls)
	}
}

func TestDeleteProjectKeepsProjectWhenTasksCannotBeRemoved(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")
	p := f.project(t, alice, "A1")
	task := f.task(t, alice, p.ID, alice.ID)

	st := *f.st
	st.Tasks = &flakyTasks{TaskStore: f.st.Tasks, failures: cascadeAttempts}
	svc := NewProjectService(&st, f.events, 0)
	svc.retryDelay = 0

	err := svc.DeleteProject(context.Background(), alice, p.ID)
	if err == nil || errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected an internal error, got %v", err)
	}
	ctx := context.Background()
	if _, err := f.st.Projects.FindByID(ctx, p.ID); err != nil {
		t.Errorf("project should be kept, got %v", err)
	}
	if _, err := f.st.Tasks.FindByID(ctx, task.ID); err != nil {
		t.Errorf("task should be kept, got %v", err)
	}
}
