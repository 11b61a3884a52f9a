package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/policy"
	"github.com/isdelr/taskflow-be/internal/store"
)

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	CreateTask(ctx context.Context, actor models.User, in models.TaskInput) (models.TaskDetail, error)
	GetTasks(ctx context.Context, actor models.User, projectID string) ([]models.TaskDetail, error)
	GetTask(ctx context.Context, actor models.User, id string) (models.TaskDetail, error)
	UpdateTask(ctx context.Context, actor models.User, id string, patch models.TaskPatch) (models.TaskDetail, error)
	DeleteTask(ctx context.Context, actor models.User, id string) error
}

// TaskService provides business logic for task management.
type TaskService struct {
	st      *store.Store
	events  EventServiceProvider
	timeout time.Duration
}

// NewTaskService creates a new TaskService.
func NewTaskService(st *store.Store, events EventServiceProvider, timeout time.Duration) *TaskService {
	return &TaskService{st: st, events: events, timeout: timeout}
}

// CreateTask creates a task inside an existing project. Only an admin or
// the project's owner may add tasks to it.
func (s *TaskService) CreateTask(ctx context.Context, actor models.User, in models.TaskInput) (models.TaskDetail, error) {
	task := in.Task(actor.ID)
	task.Normalize()
	if err := task.Validate(); err != nil {
		return models.TaskDetail{}, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	project, err := s.st.Projects.FindByID(ctx, task.Project)
	if err != nil {
		return models.TaskDetail{}, err
	}
	if err := policy.Check(policy.ActorOf(actor), policy.ForNewTask(project), policy.Create); err != nil {
		return models.TaskDetail{}, err
	}
	if err := s.checkAssignee(ctx, task.AssignedTo); err != nil {
		return models.TaskDetail{}, err
	}

	task, err = s.st.Tasks.Create(ctx, task)
	if err != nil {
		return models.TaskDetail{}, err
	}

	s.events.Record(ctx, models.Event{
		Type:      "task.create",
		Message:   fmt.Sprintf("Tugas %q dibuat", task.Title),
		ActorID:   actor.ID,
		ProjectID: project.ID,
		TaskID:    task.ID,
	}, actor.ID, project.CreatedBy, task.AssignedTo)

	pop := newPopulator(s.st.Users, s.st.Projects)
	pop.seedProject(project)
	return pop.taskDetail(ctx, task)
}

// GetTasks lists tasks, optionally narrowed to one project. Non-admins only
// see tasks assigned to them or inside a project they own.
func (s *TaskService) GetTasks(ctx context.Context, actor models.User, projectID string) ([]models.TaskDetail, error) {
	filter := store.TaskFilter{Project: projectID}
	if !actor.IsAdmin() {
		filter.VisibleTo = actor.ID
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	tasks, err := s.st.Tasks.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPopulator(s.st.Users, s.st.Projects).taskDetails(ctx, tasks)
}

// GetTask returns a single task.
func (s *TaskService) GetTask(ctx context.Context, actor models.User, id string) (models.TaskDetail, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	task, err := s.authorized(ctx, actor, id, policy.Read)
	if err != nil {
		return models.TaskDetail{}, err
	}
	return newPopulator(s.st.Users, s.st.Projects).taskDetail(ctx, task)
}

// UpdateTask applies patch to a task. Its project and creator never change.
func (s *TaskService) UpdateTask(ctx context.Context, actor models.User, id string, patch models.TaskPatch) (models.TaskDetail, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	task, err := s.authorized(ctx, actor, id, policy.Update)
	if err != nil {
		return models.TaskDetail{}, err
	}
	previousAssignee := task.AssignedTo

	patch.Apply(&task)
	task.Normalize()
	if err := task.Validate(); err != nil {
		return models.TaskDetail{}, err
	}
	if task.AssignedTo != previousAssignee {
		if err := s.checkAssignee(ctx, task.AssignedTo); err != nil {
			return models.TaskDetail{}, err
		}
	}

	task, err = s.st.Tasks.Update(ctx, task)
	if err != nil {
		return models.TaskDetail{}, err
	}

	s.events.Record(ctx, models.Event{
		Type:      "task.update",
		Message:   fmt.Sprintf("Tugas %q diperbarui", task.Title),
		ActorID:   actor.ID,
		ProjectID: task.Project,
		TaskID:    task.ID,
	}, s.involved(ctx, task, actor.ID, previousAssignee)...)
	return newPopulator(s.st.Users, s.st.Projects).taskDetail(ctx, task)
}

// DeleteTask removes a task. The assignee alone may not delete it.
func (s *TaskService) DeleteTask(ctx context.Context, actor models.User, id string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	task, err := s.authorized(ctx, actor, id, policy.Delete)
	if err != nil {
		return err
	}
	if err := s.st.Tasks.Delete(ctx, task.ID); err != nil {
		return err
	}

	s.events.Record(ctx, models.Event{
		Type:      "task.delete",
		Level:     models.LevelWarn,
		Message:   fmt.Sprintf("Tugas %q dihapus", task.Title),
		ActorID:   actor.ID,
		ProjectID: task.Project,
		TaskID:    task.ID,
	}, s.involved(ctx, task, actor.ID)...)
	return nil
}

// authorized loads a task and checks act against it. A missing task is
// NotFound for every actor.
func (s *TaskService) authorized(ctx context.Context, actor models.User, id string, act policy.Action) (models.Task, error) {
	task, err := s.st.Tasks.FindByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := policy.Check(policy.ActorOf(actor), policy.ForTask(task), act); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// checkAssignee rejects an assignee that does not name an existing user.
func (s *TaskService) checkAssignee(ctx context.Context, userID string) error {
	_, err := s.st.Users.FindByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Invalid("assignedTo", "Penerima tugas tidak ditemukan")
	}
	return err
}

// involved lists the users an event about task concerns, including the
// project owner when the project can still be loaded.
func (s *TaskService) involved(ctx context.Context, task models.Task, extra ...string) []string {
	ids := append([]string{task.CreatedBy, task.AssignedTo}, extra...)
	if project, err := s.st.Projects.FindByID(ctx, task.Project); err == nil {
		ids = append(ids, project.CreatedBy)
	}
	return audience(ids...)
}
