package models

import (
	"strings"
	"time"

	"github.com/isdelr/taskflow-be/internal/apperr"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

// Task is a unit of work inside a project.
type Task struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Priority    Priority   `json:"priority" bson:"priority"`
	Status      TaskStatus `json:"status" bson:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Project     string     `json:"project" bson:"project"`
	AssignedTo  string     `json:"assignedTo" bson:"assignedTo"`
	CreatedBy   string     `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
}

// Normalize trims input and fills defaults before validation.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = TaskTodo
	}
}

// Validate checks the schema constraints of a task record.
func (t Task) Validate() error {
	v := &apperr.ValidationError{}
	if t.Title == "" {
		v.Add("title", "Judul tugas wajib diisi")
	}
	if t.Description == "" {
		v.Add("description", "Deskripsi tugas wajib diisi")
	}
	if !t.Priority.Valid() {
		v.Add("priority", "Prioritas tugas tidak valid")
	}
	if !t.Status.Valid() {
		v.Add("status", "Status tugas tidak valid")
	}
	if t.Project == "" {
		v.Add("project", "Proyek wajib diisi")
	}
	if t.AssignedTo == "" {
		v.Add("assignedTo", "Penerima tugas wajib diisi")
	}
	if t.CreatedBy == "" {
		v.Add("createdBy", "Pembuat tugas wajib diisi")
	}
	return v.OrNil()
}

// TaskDetail is a task with its references populated.
type TaskDetail struct {
	Task
	Project    *ProjectSummary `json:"project"`
	AssignedTo *UserSummary    `json:"assignedTo"`
	CreatedBy  *UserSummary    `json:"createdBy"`
}

// TaskInput is the body of a task creation request.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	DueDate     *Date      `json:"dueDate"`
	Project     string     `json:"project"`
	AssignedTo  string     `json:"assignedTo"`
}

// Task builds an unsaved task created by creatorID.
func (in TaskInput) Task(creatorID string) Task {
	return Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		DueDate:     in.DueDate.Ptr(),
		Project:     in.Project,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   creatorID,
	}
}

// TaskPatch carries the optional fields of a task update. Project and
// creator are fixed at creation.
type TaskPatch struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Priority    *Priority   `json:"priority"`
	Status      *TaskStatus `json:"status"`
	DueDate     *Date       `json:"dueDate"`
	AssignedTo  *string     `json:"assignedTo"`
}

// Apply copies the supplied fields onto t.
func (patch TaskPatch) Apply(t *Task) {
	if patch.Title != nil {
		t.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate.Ptr()
	}
	if patch.AssignedTo != nil {
		t.AssignedTo = *patch.AssignedTo
	}
}
