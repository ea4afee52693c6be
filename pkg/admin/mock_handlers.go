package admin

import (
	"encoding/json"
	"net/http"

	"github.com/mockbay/mockbay/pkg/registry"
)

// handleCreateMock handles POST /api/mocks.
func (a *API) handleCreateMock(w http.ResponseWriter, r *http.Request) {
	var in registry.CreateEndpointInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		a.writeJSONError(w, err)
		return
	}
	e, err := a.svc.CreateEndpoint(r.Context(), identityFrom(r.Context()), in)
	if err != nil {
		a.writeError(w, r, err, "create mock")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// handleGetMock handles GET /api/mocks/{id}.
func (a *API) handleGetMock(w http.ResponseWriter, r *http.Request) {
	e, err := a.svc.Endpoint(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, "get mock")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleUpdateMock handles PUT /api/mocks/{id}. Absent fields are left
// unchanged.
func (a *API) handleUpdateMock(w http.ResponseWriter, r *http.Request) {
	var in registry.UpdateEndpointInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		a.writeJSONError(w, err)
		return
	}
	e, err := a.svc.UpdateEndpoint(r.Context(), identityFrom(r.Context()), r.PathValue("id"), in)
	if err != nil {
		a.writeError(w, r, err, "update mock")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleDeleteMock handles DELETE /api/mocks/{id}.
func (a *API) handleDeleteMock(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeleteEndpoint(r.Context(), identityFrom(r.Context()), r.PathValue("id")); err != nil {
		a.writeError(w, r, err, "delete mock")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleIssueMockToken handles GET /api/mocks/{id}/jwt: a fresh credential
// bound to the caller and the endpoint's expiry.
func (a *API) handleIssueMockToken(w http.ResponseWriter, r *http.Request) {
	resp, err := a.svc.IssueEndpointToken(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, "issue mock token")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
