package services

import (
	"context"
	"errors"

	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
)

// populator resolves stored references into their summary forms. Lookups
// are memoized for the lifetime of one operation, so a list of N tasks
// sharing an owner costs one query for that owner. A reference to a deleted
// record resolves to nil.
type populator struct {
	users    store.UserStore
	projects store.ProjectStore

	userCache    map[string]*models.UserSummary
	projectCache map[string]*models.ProjectSummary
}

func newPopulator(users store.UserStore, projects store.ProjectStore) *populator {
	return &populator{
		users:        users,
		projects:     projects,
		userCache:    make(map[string]*models.UserSummary),
		projectCache: make(map[string]*models.ProjectSummary),
	}
}

func (p *populator) user(ctx context.Context, id string) (*models.UserSummary, error) {
	if id == "" {
		return nil, nil
	}
	if s, ok := p.userCache[id]; ok {
		return s, nil
	}
	u, err := p.users.FindByID(ctx, id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	var s *models.UserSummary
	if err == nil {
		s = u.Summary()
	}
	p.userCache[id] = s
	return s, nil
}

func (p *populator) project(ctx context.Context, id string) (*models.ProjectSummary, error) {
	if id == "" {
		return nil, nil
	}
	if s, ok := p.projectCache[id]; ok {
		return s, nil
	}
	proj, err := p.projects.FindByID(ctx, id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	var s *models.ProjectSummary
	if err == nil {
		s = proj.Summary()
	}
	p.projectCache[id] = s
	return s, nil
}

// seedProject records an already loaded project.
func (p *populator) seedProject(proj models.Project) {
	p.projectCache[proj.ID] = proj.Summary()
}

func (p *populator) projectDetail(ctx context.Context, proj models.Project) (models.ProjectDetail, error) {
	owner, err := p.user(ctx, proj.CreatedBy)
	if err != nil {
		return models.ProjectDetail{}, err
	}
	return models.ProjectDetail{Project: proj, CreatedBy: owner}, nil
}

func (p *populator) projectDetails(ctx context.Context, projects []models.Project) ([]models.ProjectDetail, error) {
	out := make([]models.ProjectDetail, 0, len(projects))
	for _, proj := range projects {
		d, err := p.projectDetail(ctx, proj)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (p *populator) taskDetail(ctx context.Context, t models.Task) (models.TaskDetail, error) {
	proj, err := p.project(ctx, t.Project)
	if err != nil {
		return models.TaskDetail{}, err
	}
	assignee, err := p.user(ctx, t.AssignedTo)
	if err != nil {
		return models.TaskDetail{}, err
	}
	creator, err := p.user(ctx, t.CreatedBy)
	if err != nil {
		return models.TaskDetail{}, err
	}
	return models.TaskDetail{Task: t, Project: proj, AssignedTo: assignee, CreatedBy: creator}, nil
}

func (p *populator) taskDetails(ctx context.Context, tasks []models.Task) ([]models.TaskDetail, error) {
	out := make([]models.TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		d, err := p.taskDetail(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
