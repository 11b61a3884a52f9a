package mongostore

import (
	"context"

	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProjectStore persists projects in the projects collection.
type ProjectStore struct {
	coll *mongo.Collection
}

// Create inserts a new project.
func (s *ProjectStore) Create(ctx context.Context, p models.Project) (models.Project, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = nowUTC()
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// FindByID retrieves a single project by ID.
func (s *ProjectStore) FindByID(ctx context.Context, id string) (models.Project, error) {
	return findOne[models.Project](ctx, s.coll, bson.M{"_id": id}, store.ErrProjectNotFound)
}

// Find lists projects matching filter.
func (s *ProjectStore) Find(ctx context.Context, filter store.ProjectFilter) ([]models.Project, error) {
	query := bson.M{}
	if filter.CreatedBy != "" {
		query["createdBy"] = filter.CreatedBy
	}
	return findAll[models.Project](ctx, s.coll, query, byCreatedAt)
}

// Update overwrites the mutable fields of p. The owner is never rewritten.
func (s *ProjectStore) Update(ctx context.Context, p models.Project) (models.Project, error) {
	fields := bson.M{
		"name":        p.Name,
		"description": p.Description,
		"startDate":   p.StartDate,
		"status":      p.Status,
	}
	if p.EndDate != nil {
		fields["endDate"] = *p.EndDate
	}
	if err := setByID(ctx, s.coll, p.ID, fields, store.ErrProjectNotFound); err != nil {
		return models.Project{}, err
	}
	return s.FindByID(ctx, p.ID)
}

// Delete removes a project. Its tasks are not touched.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id, store.ErrProjectNotFound)
}
