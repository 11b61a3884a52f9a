// Package policy holds the ownership and role rules that decide whether an
// actor may act on a project or task. Every rule lives in this file.
package policy

import (
	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/models"
)

// Action is an operation on a resource.
type Action string

const (
	Read   Action = "read"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

// Kind names a resource type.
type Kind string

const (
	KindProject Kind = "project"
	KindTask    Kind = "task"
)

// Actor is the authenticated identity performing an action.
type Actor struct {
	ID    string
	Admin bool
}

// ActorOf derives the actor for u.
func ActorOf(u models.User) Actor {
	return Actor{ID: u.ID, Admin: u.IsAdmin()}
}

// Resource is a target of an authorization decision.
type Resource interface {
	Kind() Kind
}

// Project is an existing project.
type Project struct {
	OwnerID string
}

func (Project) Kind() Kind { return KindProject }

// Task is an existing task.
type Task struct {
	CreatorID  string
	AssigneeID string
}

func (Task) Kind() Kind { return KindTask }

// NewTask is a task about to be created inside a project owned by ProjectOwnerID.
type NewTask struct {
	ProjectOwnerID string
}

func (NewTask) Kind() Kind { return KindTask }

// ForProject builds the policy view of p.
func ForProject(p models.Project) Project {
	return Project{OwnerID: p.CreatedBy}
}

// ForTask builds the policy view of t.
func ForTask(t models.Task) Task {
	return Task{CreatorID: t.CreatedBy, AssigneeID: t.AssignedTo}
}

// ForNewTask builds the policy view of a task to be created in parent.
func ForNewTask(parent models.Project) NewTask {
	return NewTask{ProjectOwnerID: parent.CreatedBy}
}

type rule func(a Actor, r Resource, act Action) bool

var rules = map[Kind]rule{
	KindProject: projectRule,
	KindTask:    taskRule,
}

// Authorize reports whether a may perform act on r. Anything not matched by
// a rule is denied.
func Authorize(a Actor, r Resource, act Action) bool {
	if r == nil || a.ID == "" {
		return false
	}
	allow, ok := rules[r.Kind()]
	if !ok {
		return false
	}
	return allow(a, r, act)
}

// Check is Authorize returning a Forbidden error on denial.
func Check(a Actor, r Resource, act Action) error {
	if Authorize(a, r, act) {
		return nil
	}
	kind := Kind("")
	if r != nil {
		kind = r.Kind()
	}
	return apperr.Forbidden(deniedMessage(kind, act))
}

func projectRule(a Actor, r Resource, act Action) bool {
	p, ok := r.(Project)
	if !ok {
		return false
	}
	switch act {
	case Read, Update, Delete:
		return a.Admin || p.OwnerID == a.ID
	}
	return false
}

func taskRule(a Actor, r Resource, act Action) bool {
	switch t := r.(type) {
	case NewTask:
		return act == Create && (a.Admin || t.ProjectOwnerID == a.ID)
	case Task:
		switch act {
		case Read, Update:
			return a.Admin || t.AssigneeID == a.ID || t.CreatorID == a.ID
		case Delete:
			// The assignee alone may not delete.
			return a.Admin || t.CreatorID == a.ID
		}
	}
	return false
}

var deniedMessages = map[Kind]map[Action]string{
	KindProject: {
		Read:   "Tidak diizinkan untuk melihat proyek ini",
		Update: "Tidak diizinkan untuk mengubah proyek ini",
		Delete: "Tidak diizinkan untuk menghapus proyek ini",
	},
	KindTask: {
		Read:   "Tidak diizinkan untuk melihat tugas ini",
		Create: "Tidak diizinkan untuk menambahkan tugas ke proyek ini",
		Update: "Tidak diizinkan untuk mengubah tugas ini",
		Delete: "Tidak diizinkan untuk menghapus tugas ini",
	},
}

func deniedMessage(kind Kind, act Action) string {
	if msg, ok := deniedMessages[kind][act]; ok {
		return msg
	}
	return "Tidak diizinkan untuk akses ini"
}
