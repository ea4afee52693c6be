// Route registration for the admin API.

package admin

import (
	"net/http"
)

// registerRoutes sets up all API routes. Everything except health and login
// requires a bearer token; user management additionally requires the admin
// role.
func (a *API) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("POST /api/auth/login", a.handleLogin)

	// Project management
	mux.Handle("GET /api/projects", a.requireAuth(a.handleListProjects))
	mux.Handle("POST /api/projects", a.requireAuth(a.handleCreateProject))
	mux.Handle("GET /api/projects/{id}", a.requireAuth(a.handleGetProject))
	mux.Handle("PUT /api/projects/{id}", a.requireAuth(a.handleUpdateProject))
	mux.Handle("DELETE /api/projects/{id}", a.requireAuth(a.handleDeleteProject))
	mux.Handle("GET /api/projects/{id}/mocks", a.requireAuth(a.handleListProjectMocks))

	// Mock endpoint management
	mux.Handle("POST /api/mocks", a.requireAuth(a.handleCreateMock))
	mux.Handle("GET /api/mocks/{id}", a.requireAuth(a.handleGetMock))
	mux.Handle("PUT /api/mocks/{id}", a.requireAuth(a.handleUpdateMock))
	mux.Handle("DELETE /api/mocks/{id}", a.requireAuth(a.handleDeleteMock))
	mux.Handle("GET /api/mocks/{id}/jwt", a.requireAuth(a.handleIssueMockToken))

	// User management
	mux.Handle("GET /api/users", a.requireAdmin(a.handleListUsers))
	mux.Handle("POST /api/users", a.requireAdmin(a.handleCreateUser))
	mux.Handle("GET /api/users/{id}", a.requireAdmin(a.handleGetUser))
}
