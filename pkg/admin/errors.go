// Error handling for the admin API. Full errors are logged server-side; the
// client only ever sees the kinded caller-safe message, so internal detail
// (SQL errors, file paths) cannot leak through a response body.

package admin

import (
	"encoding/json"
	"net/http"

	"github.com/mockbay/mockbay/pkg/apierr"
)

// ErrorResponse is the error payload shape shared by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError logs the full error and writes the sanitized message with the
// status mapped from its kind. Unkinded errors come out as a generic 500.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status := apierr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.log.Error("operation failed", "operation", operation, "path", r.URL.Path, "error", err)
	} else {
		a.log.Debug("request rejected", "operation", operation, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: apierr.Message(err)})
}

// writeJSONError reports a malformed request body without echoing parser
// detail.
func (a *API) writeJSONError(w http.ResponseWriter, err error) {
	a.log.Debug("JSON parsing failed", "error", err)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON in request body"})
}
