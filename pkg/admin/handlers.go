package admin

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the payload of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// handleHealth handles GET /api/health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: a.Uptime().Round(time.Second).String(),
	})
}

// LoginRequest is the payload of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token for subsequent requests.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleLogin handles POST /api/auth/login.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSONError(w, err)
		return
	}

	u, err := a.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		a.writeError(w, r, err, "login")
		return
	}

	expiresAt := time.Now().Add(a.sessionTTL)
	signed, err := a.issuer.Issue(u.Username, expiresAt)
	if err != nil {
		a.writeError(w, r, err, "issue session token")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: signed, ExpiresAt: expiresAt})
}
