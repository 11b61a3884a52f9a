package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/services"
)

// ProjectHandler handles HTTP requests for projects.
type ProjectHandler struct {
	service services.ProjectServiceProvider
	res     *Responder
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(service services.ProjectServiceProvider, res *Responder) *ProjectHandler {
	return &ProjectHandler{service: service, res: res}
}

// Create handles creating a project owned by the current user.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal membuat proyek"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	var payload models.ProjectInput
	if err := decodeJSON(w, r, &payload); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}

	project, err := h.service.CreateProject(r.Context(), me, payload)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.OK(w, http.StatusCreated, project)
}

// GetAll lists the projects visible to the current user.
func (h *ProjectHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal mendapatkan daftar proyek"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	projects, err := h.service.GetProjects(r.Context(), me)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.List(w, projects, len(projects))
}

// Get returns a project with its tasks.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal mendapatkan proyek"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	project, err := h.service.GetProject(r.Context(), me, chi.URLParam(r, "id"))
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.OK(w, http.StatusOK, project)
}

// Update handles partial project updates.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal memperbarui proyek"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	var patch models.ProjectPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}

	project, err := h.service.UpdateProject(r.Context(), me, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.OK(w, http.StatusOK, project)
}

// Delete removes a project and its tasks.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal menghapus proyek"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	if err := h.service.DeleteProject(r.Context(), me, chi.URLParam(r, "id")); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.JSON(w, http.StatusOK, Envelope{Success: true, Message: "Proyek berhasil dihapus"})
}
