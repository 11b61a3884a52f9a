package services

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/policy"
	"github.com/isdelr/taskflow-be/internal/store"
	"github.com/rs/zerolog/log"
)

// cascadeAttempts bounds how often deleting a project's tasks is tried.
const cascadeAttempts = 3

// ProjectWithTasks is a project together with its populated tasks.
type ProjectWithTasks struct {
	Project models.ProjectDetail `json:"project"`
	Tasks   []models.TaskDetail  `json:"tasks"`
}

// ProjectServiceProvider defines the interface for project services.
type ProjectServiceProvider interface {
	CreateProject(ctx context.Context, actor models.User, in models.ProjectInput) (models.ProjectDetail, error)
	GetProjects(ctx context.Context, actor models.User) ([]models.ProjectDetail, error)
	GetProject(ctx context.Context, actor models.User, id string) (ProjectWithTasks, error)
	UpdateProject(ctx context.Context, actor models.User, id string, patch models.ProjectPatch) (models.ProjectDetail, error)
	DeleteProject(ctx context.Context, actor models.User, id string) error
}

// ProjectService provides business logic for project management.
type ProjectService struct {
	st      *store.Store
	events  EventServiceProvider
	timeout time.Duration
	now     func() time.Time
	// retryDelay separates attempts at deleting a project's tasks.
	retryDelay time.Duration
}

// NewProjectService creates a new ProjectService.
func NewProjectService(st *store.Store, events EventServiceProvider, timeout time.Duration) *ProjectService {
	return &ProjectService{
		st:         st,
		events:     events,
		timeout:    timeout,
		now:        func() time.Time { return time.Now().UTC() },
		retryDelay: 200 * time.Millisecond,
	}
}

// CreateProject creates a project owned by actor.
func (s *ProjectService) CreateProject(ctx context.Context, actor models.User, in models.ProjectInput) (models.ProjectDetail, error) {
	project := in.Project(actor.ID)
	project.Normalize(s.now())
	if err := project.Validate(); err != nil {
		return models.ProjectDetail{}, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	project, err := s.st.Projects.Create(ctx, project)
	if err != nil {
		return models.ProjectDetail{}, err
	}

	s.events.Record(ctx, models.Event{
		Type:      "project.create",
		Message:   fmt.Sprintf("Proyek %q dibuat", project.Name),
		ActorID:   actor.ID,
		ProjectID: project.ID,
	}, actor.ID)
	return newPopulator(s.st.Users, s.st.Projects).projectDetail(ctx, project)
}

// GetProjects lists every project for an admin and the actor's own projects otherwise.
func (s *ProjectService) GetProjects(ctx context.Context, actor models.User) ([]models.ProjectDetail, error) {
	filter := store.ProjectFilter{}
	if !actor.IsAdmin() {
		filter.CreatedBy = actor.ID
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	projects, err := s.st.Projects.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPopulator(s.st.Users, s.st.Projects).projectDetails(ctx, projects)
}

// GetProject returns a project and its tasks.
func (s *ProjectService) GetProject(ctx context.Context, actor models.User, id string) (ProjectWithTasks, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	project, err := s.authorized(ctx, actor, id, policy.Read)
	if err != nil {
		return ProjectWithTasks{}, err
	}
	tasks, err := s.st.Tasks.Find(ctx, store.TaskFilter{Project: project.ID})
	if err != nil {
		return ProjectWithTasks{}, err
	}

	pop := newPopulator(s.st.Users, s.st.Projects)
	pop.seedProject(project)
	detail, err := pop.projectDetail(ctx, project)
	if err != nil {
		return ProjectWithTasks{}, err
	}
	taskDetails, err := pop.taskDetails(ctx, tasks)
	if err != nil {
		return ProjectWithTasks{}, err
	}
	return ProjectWithTasks{Project: detail, Tasks: taskDetails}, nil
}

// UpdateProject applies patch to a project. The owner never changes.
func (s *ProjectService) UpdateProject(ctx context.Context, actor models.User, id string, patch models.ProjectPatch) (models.ProjectDetail, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	project, err := s.authorized(ctx, actor, id, policy.Update)
	if err != nil {
		return models.ProjectDetail{}, err
	}
	patch.Apply(&project)
	project.Normalize(s.now())
	if err := project.Validate(); err != nil {
		return models.ProjectDetail{}, err
	}

	project, err = s.st.Projects.Update(ctx, project)
	if err != nil {
		return models.ProjectDetail{}, err
	}

	s.events.Record(ctx, models.Event{
		Type:      "project.update",
		Message:   fmt.Sprintf("Proyek %q diperbarui", project.Name),
		ActorID:   actor.ID,
		ProjectID: project.ID,
	}, actor.ID, project.CreatedBy)
	return newPopulator(s.st.Users, s.st.Projects).projectDetail(ctx, project)
}

// DeleteProject removes a project's tasks and then the project. There is no
// transaction: if the tasks cannot be removed the project is kept, and if
// the project cannot be removed after its tasks are gone it is left empty.
func (s *ProjectService) DeleteProject(ctx context.Context, actor models.User, id string) error {
	lookupCtx, cancel := withTimeout(ctx, s.timeout)
	project, err := s.authorized(lookupCtx, actor, id, policy.Delete)
	cancel()
	if err != nil {
		return err
	}

	removed, err := s.deleteTasks(ctx, project.ID)
	if err != nil {
		log.Error().Err(err).Str("project_id", project.ID).Str("user_id", actor.ID).Msg("Failed to delete project tasks, project kept")
		return fmt.Errorf("failed to delete tasks of project %s: %w", project.ID, err)
	}

	deleteCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.st.Projects.Delete(deleteCtx, project.ID); err != nil {
		log.Error().Err(err).Str("project_id", project.ID).Str("user_id", actor.ID).Int64("tasks_removed", removed).Msg("Project tasks deleted but project delete failed")
		return fmt.Errorf("failed to delete project %s: %w", project.ID, err)
	}

	s.events.Record(deleteCtx, models.Event{
		Type:      "project.delete",
		Level:     models.LevelWarn,
		Message:   fmt.Sprintf("Proyek %q dihapus beserta %d tugas", project.Name, removed),
		ActorID:   actor.ID,
		ProjectID: project.ID,
	}, actor.ID, project.CreatedBy)
	return nil
}

// deleteTasks removes every task of a project, retrying since the operation
// is idempotent.
func (s *ProjectService) deleteTasks(ctx context.Context, projectID string) (int64, error) {
	var lastErr error
	for i := 0; i < cascadeAttempts; i++ {
		attemptCtx, cancel := withTimeout(ctx, s.timeout)
		removed, err := s.st.Tasks.DeleteByProject(attemptCtx, projectID)
		cancel()
		if err == nil {
			return removed, nil
		}
		lastErr = err
		log.Warn().Err(err).Str("project_id", projectID).Int("attempt", i+1).Msg("Deleting project tasks failed, retrying...")

		if i+1 < cascadeAttempts {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
	}
	return 0, lastErr
}

// authorized loads a project and checks act against it. A missing project
// is NotFound for every actor.
func (s *ProjectService) authorized(ctx context.Context, actor models.User, id string, act policy.Action) (models.Project, error) {
	project, err := s.st.Projects.FindByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if err := policy.Check(policy.ActorOf(actor), policy.ForProject(project), act); err != nil {
		return models.Project{}, err
	}
	return project, nil
}
