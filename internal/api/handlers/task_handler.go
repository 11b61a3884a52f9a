package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/services"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	service services.TaskServiceProvider
	res     *Responder
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider, res *Responder) *TaskHandler {
	return &TaskHandler{service: service, res: res}
}

// Create handles creating a task inside a project.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal membuat tugas"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	var payload models.TaskInput
	if err := decodeJSON(w, r, &payload); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}

	task, err := h.service.CreateTask(r.Context(), me, payload)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.OK(w, http.StatusCreated, task)
}

// GetAll lists the tasks visible to the current user, optionally for one
// project given as ?project=<id>.
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal mendapatkan daftar tugas"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	tasks, err := h.service.GetTasks(r.Context(), me, r.URL.Query().Get("project"))
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.List(w, tasks, len(tasks))
}

// Get returns a single task.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal mendapatkan tugas"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	task, err := h.service.GetTask(r.Context(), me, chi.URLParam(r, "id"))
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.OK(w, http.StatusOK, task)
}

// Update handles partial task updates.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal memperbarui tugas"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	var patch models.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), me, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.OK(w, http.StatusOK, task)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal menghapus tugas"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	if err := h.service.DeleteTask(r.Context(), me, chi.URLParam(r, "id")); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.JSON(w, http.StatusOK, Envelope{Success: true, Message: "Tugas berhasil dihapus"})
}
