// Package admin provides the JSON API for managing projects, mock endpoints,
// and users.
package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mockbay/mockbay/pkg/registry"
	"github.com/mockbay/mockbay/pkg/token"
)

// DefaultSessionTTL bounds the lifetime of login tokens.
const DefaultSessionTTL = 24 * time.Hour

// API exposes the admin surface over a registry service.
type API struct {
	svc    *registry.Service
	issuer *token.Issuer
	log    *slog.Logger

	sessionTTL time.Duration
	startTime  time.Time
}

// Option configures the API.
type Option func(*API)

// WithSessionTTL overrides the login token lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(a *API) { a.sessionTTL = ttl }
}

// NewAPI creates the admin API.
func NewAPI(svc *registry.Service, issuer *token.Issuer, log *slog.Logger, opts ...Option) *API {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &API{
		svc:        svc,
		issuer:     issuer,
		log:        log,
		sessionTTL: DefaultSessionTTL,
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler builds the routed handler for the admin listener.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.registerRoutes(mux)
	return mux
}

// Uptime reports how long the API has been serving.
func (a *API) Uptime() time.Duration {
	return time.Since(a.startTime)
}
