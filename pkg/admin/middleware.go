// Authentication middleware for the admin API.

package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/mockbay/mockbay/pkg/apierr"
	"github.com/mockbay/mockbay/pkg/mock"
)

type contextKey int

const identityKey contextKey = iota

// requireAuth resolves the bearer token to a stored identity and puts it on
// the request context.
func (a *API) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := a.authenticate(r)
		if err != nil {
			a.writeError(w, r, err, "authenticate request")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, caller)))
	})
}

// requireAdmin is requireAuth plus the admin role.
func (a *API) requireAdmin(next http.HandlerFunc) http.Handler {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if caller := identityFrom(r.Context()); caller == nil || !caller.IsAdmin() {
			a.writeError(w, r, apierr.PermissionDenied("access denied"), "authorize request")
			return
		}
		next(w, r)
	})
}

func (a *API) authenticate(r *http.Request) (*mock.User, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(raw, prefix) {
		return nil, apierr.Unauthorized("bearer token required")
	}
	claims, err := a.issuer.Verify(strings.TrimSpace(raw[len(prefix):]))
	if err != nil {
		return nil, apierr.Unauthorized("invalid or expired token")
	}
	u, err := a.svc.UserByUsername(r.Context(), claims.Subject)
	if err != nil {
		// The subject no longer resolves to a live account.
		return nil, apierr.Unauthorized("invalid or expired token")
	}
	if !u.Enabled {
		return nil, apierr.Unauthorized("invalid or expired token")
	}
	return u, nil
}

// identityFrom returns the authenticated caller, or nil outside requireAuth.
func identityFrom(ctx context.Context) *mock.User {
	u, _ := ctx.Value(identityKey).(*mock.User)
	return u
}
