package mongostore

import (
	"context"

	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskStore persists tasks in the tasks collection.
type TaskStore struct {
	coll     *mongo.Collection
	projects *mongo.Collection
}

// Create inserts a new task.
func (s *TaskStore) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = nowUTC()
	}
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// FindByID retrieves a single task by ID.
func (s *TaskStore) FindByID(ctx context.Context, id string) (models.Task, error) {
	return findOne[models.Task](ctx, s.coll, bson.M{"_id": id}, store.ErrTaskNotFound)
}

// Find lists tasks matching filter.
func (s *TaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]models.Task, error) {
	query := bson.M{}
	if filter.Project != "" {
		query["project"] = filter.Project
	}
	if filter.VisibleTo != "" {
		owned, err := s.ownedProjectIDs(ctx, filter.VisibleTo)
		if err != nil {
			return nil, err
		}
		query["$or"] = bson.A{
			bson.M{"assignedTo": filter.VisibleTo},
			bson.M{"project": bson.M{"$in": owned}},
		}
	}
	return findAll[models.Task](ctx, s.coll, query, byCreatedAt)
}

func (s *TaskStore) ownedProjectIDs(ctx context.Context, userID string) (bson.A, error) {
	cursor, err := s.projects.Find(ctx, bson.M{"createdBy": userID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make(bson.A, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// Update overwrites the mutable fields of t. Project and creator are never rewritten.
func (s *TaskStore) Update(ctx context.Context, t models.Task) (models.Task, error) {
	fields := bson.M{
		"title":       t.Title,
		"description": t.Description,
		"priority":    t.Priority,
		"status":      t.Status,
		"assignedTo":  t.AssignedTo,
	}
	if t.DueDate != nil {
		fields["dueDate"] = *t.DueDate
	}
	if err := setByID(ctx, s.coll, t.ID, fields, store.ErrTaskNotFound); err != nil {
		return models.Task{}, err
	}
	return s.FindByID(ctx, t.ID)
}

// Delete removes a task.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id, store.ErrTaskNotFound)
}

// DeleteByProject removes every task referencing projectID.
func (s *TaskStore) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"project": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
