package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
)

// TaskStore persists tasks in the tasks table.
type TaskStore struct {
	db *sql.DB
}

const taskColumns = "id, title, description, priority, status, due_date, project_id, assigned_to, created_by, created_at"

func scanTask(row scanner) (models.Task, error) {
	var t models.Task
	var dueDate sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &dueDate,
		&t.Project, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Task{}, store.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	t.DueDate = timePtr(dueDate)
	return t, nil
}

// Create inserts a new task.
func (s *TaskStore) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = nowUTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks("+taskColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.Title, t.Description, string(t.Priority), string(t.Status), nullTime(t.DueDate),
		t.Project, t.AssignedTo, t.CreatedBy, t.CreatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return t, nil
}

// FindByID retrieves a single task by ID.
func (s *TaskStore) FindByID(ctx context.Context, id string) (models.Task, error) {
	return scanTask(s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
}

// Find lists tasks matching filter.
func (s *TaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]models.Task, error) {
	var where []string
	var args []interface{}
	if filter.Project != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.Project)
	}
	if filter.VisibleTo != "" {
		where = append(where, "(assigned_to = ? OR project_id IN (SELECT id FROM projects WHERE created_by = ?))")
		args = append(args, filter.VisibleTo, filter.VisibleTo)
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update overwrites the mutable fields of t. Project and creator are never rewritten.
func (s *TaskStore) Update(ctx context.Context, t models.Task) (models.Task, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, description = ?, priority = ?, status = ?, due_date = ?, assigned_to = ? WHERE id = ?",
		t.Title, t.Description, string(t.Priority), string(t.Status), nullTime(t.DueDate), t.AssignedTo, t.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if err := affectedOrNotFound(res, store.ErrTaskNotFound); err != nil {
		return models.Task{}, err
	}
	return s.FindByID(ctx, t.ID)
}

// Delete removes a task.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, store.ErrTaskNotFound)
}

// DeleteByProject removes every task referencing projectID.
func (s *TaskStore) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE project_id = ?", projectID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
