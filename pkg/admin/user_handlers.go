package admin

import (
	"encoding/json"
	"net/http"

	"github.com/mockbay/mockbay/pkg/registry"
)

// handleListUsers handles GET /api/users (admin only).
func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.svc.Users(r.Context())
	if err != nil {
		a.writeError(w, r, err, "list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// handleCreateUser handles POST /api/users (admin only).
func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in registry.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		a.writeJSONError(w, err)
		return
	}
	u, err := a.svc.CreateUser(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err, "create user")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// handleGetUser handles GET /api/users/{id} (admin only).
func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.svc.User(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, "get user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
