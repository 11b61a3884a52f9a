package models

import (
	"strings"
	"time"

	"github.com/isdelr/taskflow-be/internal/apperr"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectOngoing, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// Project groups tasks under a single owner.
type Project struct {
	ID          string        `json:"id" bson:"_id"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description" bson:"description"`
	StartDate   time.Time     `json:"startDate" bson:"startDate"`
	EndDate     *time.Time    `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Status      ProjectStatus `json:"status" bson:"status"`
	CreatedBy   string        `json:"createdBy" bson:"createdBy"` // owner, immutable
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
}

// Summary is the populated form embedded in tasks.
func (p Project) Summary() *ProjectSummary {
	return &ProjectSummary{ID: p.ID, Name: p.Name, Description: p.Description}
}

// Normalize trims input and fills defaults before validation.
func (p *Project) Normalize(now time.Time) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Status == "" {
		p.Status = ProjectPlanning
	}
	if p.StartDate.IsZero() {
		p.StartDate = now
	}
}

// Validate checks the schema constraints of a project record.
func (p Project) Validate() error {
	v := &apperr.ValidationError{}
	if p.Name == "" {
		v.Add("name", "Nama proyek wajib diisi")
	}
	if p.Description == "" {
		v.Add("description", "Deskripsi proyek wajib diisi")
	}
	if !p.Status.Valid() {
		v.Add("status", "Status proyek tidak valid")
	}
	if p.CreatedBy == "" {
		v.Add("createdBy", "Pembuat proyek wajib diisi")
	}
	return v.OrNil()
}

// ProjectSummary is the subset of project fields returned when a reference is populated.
type ProjectSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectDetail is a project with its owner populated.
type ProjectDetail struct {
	Project
	CreatedBy *UserSummary `json:"createdBy"`
}

// ProjectInput is the body of a project creation request.
type ProjectInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartDate   *Date         `json:"startDate"`
	EndDate     *Date         `json:"endDate"`
	Status      ProjectStatus `json:"status"`
}

// Project builds an unsaved project owned by ownerID.
func (in ProjectInput) Project(ownerID string) Project {
	p := Project{
		Name:        in.Name,
		Description: in.Description,
		EndDate:     in.EndDate.Ptr(),
		Status:      in.Status,
		CreatedBy:   ownerID,
	}
	if in.StartDate != nil {
		p.StartDate = in.StartDate.Time
	}
	return p
}

// ProjectPatch carries the optional fields of a project update.
// The owner is not patchable.
type ProjectPatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	StartDate   *Date          `json:"startDate"`
	EndDate     *Date          `json:"endDate"`
	Status      *ProjectStatus `json:"status"`
}

// Apply copies the supplied fields onto p.
func (patch ProjectPatch) Apply(p *Project) {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate.Time
	}
	if patch.EndDate != nil {
		p.EndDate = patch.EndDate.Ptr()
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
}
