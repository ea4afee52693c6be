package admin

import (
	"encoding/json"
	"net/http"

	"github.com/mockbay/mockbay/pkg/registry"
)

// handleListProjects handles GET /api/projects. Admins see all projects,
// everyone else their own.
func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.svc.Projects(r.Context(), identityFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err, "list projects")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// handleCreateProject handles POST /api/projects.
func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in registry.CreateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		a.writeJSONError(w, err)
		return
	}
	p, err := a.svc.CreateProject(r.Context(), identityFrom(r.Context()), in)
	if err != nil {
		a.writeError(w, r, err, "create project")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleGetProject handles GET /api/projects/{id}.
func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Project(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, "get project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdateProject handles PUT /api/projects/{id}.
func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var in registry.UpdateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		a.writeJSONError(w, err)
		return
	}
	p, err := a.svc.UpdateProject(r.Context(), identityFrom(r.Context()), r.PathValue("id"), in)
	if err != nil {
		a.writeError(w, r, err, "update project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleDeleteProject handles DELETE /api/projects/{id}.
func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeleteProject(r.Context(), identityFrom(r.Context()), r.PathValue("id")); err != nil {
		a.writeError(w, r, err, "delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListProjectMocks handles GET /api/projects/{id}/mocks.
func (a *API) handleListProjectMocks(w http.ResponseWriter, r *http.Request) {
	endpoints, err := a.svc.EndpointsByProject(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, "list project mocks")
		return
	}
	writeJSON(w, http.StatusOK, endpoints)
}
