// Package dispatch serves live HTTP traffic against stored mock definitions.
// A request to /{project}/{any-path} walks a fixed gate order: method, path,
// lookup, expiration, credential, delay, then response assembly.
package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mockbay/mockbay/pkg/apierr"
	"github.com/mockbay/mockbay/pkg/mock"
	"github.com/mockbay/mockbay/pkg/token"
)

// EndpointFinder resolves a mock definition for dispatch.
type EndpointFinder interface {
	FindForDispatch(ctx context.Context, projectName, path, method string) (*mock.Endpoint, error)
}

// Verifier checks bearer credentials on JWT-gated endpoints.
type Verifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Handler is the catch-all handler on the mock listener.
type Handler struct {
	finder   EndpointFinder
	verifier Verifier
	log      *slog.Logger

	now func() time.Time
}

// NewHandler creates the dispatch handler.
func NewHandler(finder EndpointFinder, verifier Verifier, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{finder: finder, verifier: verifier, log: log, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error("panic during dispatch", "panic", rec, "path", r.URL.Path)
			writeError(w, apierr.New(apierr.KindInternal, "internal server error"))
		}
	}()

	project, rest := splitProjectPath(r.URL.Path)
	if project == "" {
		writeError(w, apierr.NotFound("mock endpoint not found for %s %s", r.Method, r.URL.Path))
		return
	}

	e, err := h.finder.FindForDispatch(r.Context(), project, rest, r.Method)
	if err != nil {
		writeError(w, err)
		return
	}

	// Expiration is checked before credentials so an expired endpoint is
	// always Gone, valid token or not.
	if e.Expired(h.now()) {
		writeError(w, apierr.Gone("mock endpoint has expired"))
		return
	}

	if e.RequiresJWT {
		if err := h.checkCredential(r); err != nil {
			writeError(w, err)
			return
		}
	}

	if e.DelaySeconds > 0 {
		if err := h.wait(r.Context(), time.Duration(e.DelaySeconds)*time.Second); err != nil {
			// Client went away mid-delay; nothing useful to write.
			return
		}
	}

	h.emit(w, e)
	h.log.Debug("dispatched mock response",
		"project", project, "path", e.Path, "method", e.Method, "status", e.StatusCode)
}

func (h *Handler) checkCredential(r *http.Request) error {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(raw, prefix) {
		return apierr.Unauthorized("bearer token required")
	}
	if _, err := h.verifier.Verify(strings.TrimSpace(raw[len(prefix):])); err != nil {
		return apierr.Unauthorized("invalid or expired token")
	}
	return nil
}

// wait suspends only this request; the timer is dropped if the client
// disconnects first.
func (h *Handler) wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// emit writes the stored response. The content type goes first, then custom
// headers in stored order; a custom header with the same key wins.
func (h *Handler) emit(w http.ResponseWriter, e *mock.Endpoint) {
	w.Header().Set("Content-Type", e.ContentType)
	for _, hdr := range e.Headers {
		w.Header().Set(hdr.Key, hdr.Value)
	}
	w.WriteHeader(e.StatusCode)
	if e.Body != "" {
		w.Write([]byte(e.Body))
	}
}

// splitProjectPath separates the leading project segment from the remaining
// path. "/demo/api/users" becomes ("demo", "/api/users").
func splitProjectPath(urlPath string) (project, rest string) {
	trimmed := strings.TrimPrefix(urlPath, "/")
	if trimmed == "" {
		return "", ""
	}
	project, rest, found := strings.Cut(trimmed, "/")
	if !found {
		return project, "/"
	}
	return project, "/" + rest
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apierr.HTTPStatus(err))
	json.NewEncoder(w).Encode(map[string]string{"error": apierr.Message(err)})
}
