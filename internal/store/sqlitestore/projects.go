package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
)

// ProjectStore persists projects in the projects table.
type ProjectStore struct {
	db *sql.DB
}

const projectColumns = "id, name, description, start_date, end_date, status, created_by, created_at"

func scanProject(row scanner) (models.Project, error) {
	var p models.Project
	var endDate sql.NullTime
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &endDate, &p.Status, &p.CreatedBy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Project{}, store.ErrProjectNotFound
	}
	if err != nil {
		return models.Project{}, err
	}
	p.EndDate = timePtr(endDate)
	return p, nil
}

// Create inserts a new project.
func (s *ProjectStore) Create(ctx context.Context, p models.Project) (models.Project, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = nowUTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects("+projectColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Description, p.StartDate.UTC(), nullTime(p.EndDate), string(p.Status), p.CreatedBy, p.CreatedAt)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to insert project: %w", err)
	}
	return p, nil
}

// FindByID retrieves a single project by ID.
func (s *ProjectStore) FindByID(ctx context.Context, id string) (models.Project, error) {
	return scanProject(s.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
}

// Find lists projects matching filter.
func (s *ProjectStore) Find(ctx context.Context, filter store.ProjectFilter) ([]models.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects"
	var args []interface{}
	if filter.CreatedBy != "" {
		query += " WHERE created_by = ?"
		args = append(args, filter.CreatedBy)
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update overwrites the mutable fields of p. The owner is never rewritten.
func (s *ProjectStore) Update(ctx context.Context, p models.Project) (models.Project, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, description = ?, start_date = ?, end_date = ?, status = ? WHERE id = ?",
		p.Name, p.Description, p.StartDate.UTC(), nullTime(p.EndDate), string(p.Status), p.ID)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	if err := affectedOrNotFound(res, store.ErrProjectNotFound); err != nil {
		return models.Project{}, err
	}
	return s.FindByID(ctx, p.ID)
}

// Delete removes a project. Its tasks are not touched.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, store.ErrProjectNotFound)
}
