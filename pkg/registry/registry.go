// Package registry is the service layer over storage: endpoint CRUD with
// expiration and cached-credential policy, project CRUD, and identity
// management.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/access"
	"github.com/mockbay/mockbay/pkg/apierr"
	"github.com/mockbay/mockbay/pkg/mock"
	"github.com/mockbay/mockbay/pkg/token"
)

// Service exposes the registry operations. All methods that mutate or read
// identity-scoped records take the authenticated caller.
type Service struct {
	store  storage.Store
	issuer *token.Issuer
	log    *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// New creates a Service over the given store and credential issuer.
func New(store storage.Store, issuer *token.Issuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, issuer: issuer, log: log, now: time.Now}
}

// CreateEndpointInput carries a new endpoint definition. Expiration names an
// expiration option; empty selects the default (one year).
type CreateEndpointInput struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ContentType  string        `json:"contentType"`
	Body         string        `json:"body"`
	Headers      []mock.Header `json:"headers"`
	DelaySeconds int           `json:"delaySeconds"`
	RequiresJWT  bool          `json:"requiresJwt"`
	Expiration   string        `json:"expiration"`
	ProjectID    string        `json:"projectId"`
}

// CreateEndpoint registers a mock endpoint under a project the caller can
// access. When the endpoint requires a JWT a credential is issued eagerly and
// cached on the record.
func (s *Service) CreateEndpoint(ctx context.Context, caller *mock.User, in CreateEndpointInput) (*mock.Endpoint, error) {
	if caller == nil {
		return nil, apierr.Unauthorized("authentication required")
	}

	project, err := s.store.ProjectByID(ctx, in.ProjectID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.NotFound("project not found")
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if err := access.CanAccess(project.CreatedBy, caller); err != nil {
		return nil, err
	}

	method, err := mock.ParseMethod(in.Method)
	if err != nil {
		return nil, apierr.InvalidArgument("%s", err)
	}
	expiresAt, err := s.resolveExpiry(in.Expiration)
	if err != nil {
		return nil, err
	}

	e := &mock.Endpoint{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Description:  in.Description,
		Path:         mock.NormalizePath(in.Path),
		Method:       method,
		StatusCode:   in.StatusCode,
		ContentType:  in.ContentType,
		Body:         in.Body,
		Headers:      in.Headers,
		DelaySeconds: in.DelaySeconds,
		RequiresJWT:  in.RequiresJWT,
		ExpiresAt:    expiresAt,
		ProjectID:    project.ID,
		CreatedBy:    caller.ID,
		CreatedAt:    s.now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, apierr.InvalidArgument("%s", err)
	}

	if e.RequiresJWT {
		signed, err := s.issuer.Issue(caller.Username, e.ExpiresAt)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		e.GeneratedJWT = signed
	}

	if err := s.store.CreateEndpoint(ctx, e); err != nil {
		return nil, apierr.Internal(err)
	}
	s.log.Info("endpoint created",
		"id", e.ID, "project", project.Name, "path", e.Path, "method", e.Method)
	return e, nil
}

// UpdateEndpointInput is a partial update: nil fields are left unchanged. A
// supplied header list replaces the whole list.
type UpdateEndpointInput struct {
	Name         *string        `json:"name"`
	Description  *string        `json:"description"`
	Path         *string        `json:"path"`
	Method       *string        `json:"method"`
	StatusCode   *int           `json:"statusCode"`
	ContentType  *string        `json:"contentType"`
	Body         *string        `json:"body"`
	Headers      *[]mock.Header `json:"headers"`
	DelaySeconds *int           `json:"delaySeconds"`
	RequiresJWT  *bool          `json:"requiresJwt"`
	Expiration   *string        `json:"expiration"`
}

// UpdateEndpoint applies a partial update. The cached credential is resolved
// in a single step after the new expiry and flag are known: cleared when the
// gate is off, regenerated when the expiry changed or the gate was just
// enabled, issued lazily when the gate is on but no token is cached, and left
// untouched otherwise.
func (s *Service) UpdateEndpoint(ctx context.Context, caller *mock.User, id string, in UpdateEndpointInput) (*mock.Endpoint, error) {
	e, err := s.endpointForCaller(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		e.Name = *in.Name
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Path != nil {
		e.Path = mock.NormalizePath(*in.Path)
	}
	if in.Method != nil {
		method, err := mock.ParseMethod(*in.Method)
		if err != nil {
			return nil, apierr.InvalidArgument("%s", err)
		}
		e.Method = method
	}
	if in.StatusCode != nil {
		e.StatusCode = *in.StatusCode
	}
	if in.ContentType != nil {
		e.ContentType = *in.ContentType
	}
	if in.Body != nil {
		e.Body = *in.Body
	}
	if in.Headers != nil {
		e.Headers = *in.Headers
	}
	if in.DelaySeconds != nil {
		e.DelaySeconds = *in.DelaySeconds
	}

	expiryChanged := false
	if in.Expiration != nil {
		expiresAt, err := s.resolveExpiry(*in.Expiration)
		if err != nil {
			return nil, err
		}
		e.ExpiresAt = expiresAt
		expiryChanged = true
	}
	flagEnabled := false
	if in.RequiresJWT != nil {
		flagEnabled = *in.RequiresJWT && !e.RequiresJWT
		e.RequiresJWT = *in.RequiresJWT
	}

	if err := e.Validate(); err != nil {
		return nil, apierr.InvalidArgument("%s", err)
	}

	switch {
	case !e.RequiresJWT:
		e.GeneratedJWT = ""
	case flagEnabled || expiryChanged || e.GeneratedJWT == "":
		owner, err := s.store.UserByID(ctx, e.CreatedBy)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		signed, err := s.issuer.Issue(owner.Username, e.ExpiresAt)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		e.GeneratedJWT = signed
	}

	if err := s.store.UpdateEndpoint(ctx, e); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierr.NotFound("mock endpoint not found")
		}
		return nil, apierr.Internal(err)
	}
	s.log.Info("endpoint updated", "id", e.ID)
	return e, nil
}

// Endpoint returns a single endpoint the caller can access.
func (s *Service) Endpoint(ctx context.Context, caller *mock.User, id string) (*mock.Endpoint, error) {
	return s.endpointForCaller(ctx, caller, id)
}

// DeleteEndpoint removes an endpoint the caller can access.
func (s *Service) DeleteEndpoint(ctx context.Context, caller *mock.User, id string) error {
	if _, err := s.endpointForCaller(ctx, caller, id); err != nil {
		return err
	}
	if err := s.store.DeleteEndpoint(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apierr.NotFound("mock endpoint not found")
		}
		return apierr.Internal(err)
	}
	s.log.Info("endpoint deleted", "id", id)
	return nil
}

// EndpointsByProject lists the endpoints of a project the caller can access.
func (s *Service) EndpointsByProject(ctx context.Context, caller *mock.User, projectID string) ([]*mock.Endpoint, error) {
	if _, err := s.projectForCaller(ctx, caller, projectID); err != nil {
		return nil, err
	}
	endpoints, err := s.store.ListEndpointsByProject(ctx, projectID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return endpoints, nil
}

// TokenResponse is the payload of the credential endpoint.
type TokenResponse struct {
	Token  string `json:"token"`
	Bearer string `json:"bearer"`
}

// IssueEndpointToken issues a fresh credential bound to the caller and the
// endpoint's expiry. The cached token on the record is not touched.
func (s *Service) IssueEndpointToken(ctx context.Context, caller *mock.User, id string) (*TokenResponse, error) {
	if caller == nil {
		return nil, apierr.Unauthorized("authentication required")
	}
	e, err := s.store.EndpointByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.NotFound("mock endpoint not found")
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if e.ExpiresAt.IsZero() {
		return nil, apierr.InvalidArgument("mock endpoint has no expiration")
	}
	if e.Expired(s.now()) {
		return nil, apierr.Conflict("mock endpoint has expired")
	}

	signed, err := s.issuer.Issue(caller.Username, e.ExpiresAt)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &TokenResponse{Token: signed, Bearer: "Bearer " + signed}, nil
}

// FindForDispatch is the dispatch-time lookup by project name, raw path, and
// method token. The NotFound message embeds method and path, never internal
// identifiers.
func (s *Service) FindForDispatch(ctx context.Context, projectName, path, method string) (*mock.Endpoint, error) {
	m, err := mock.ParseMethod(method)
	if err != nil {
		return nil, apierr.InvalidArgument("%s", err)
	}
	normalized := mock.NormalizePath(path)

	e, err := s.store.FindEndpoint(ctx, projectName, normalized, m)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.NotFound("mock endpoint not found for %s %s", m, normalized)
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return e, nil
}

// PurgeExpiredBefore removes endpoints whose expiry is older than cutoff.
func (s *Service) PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.store.DeleteEndpointsExpiredBefore(ctx, cutoff)
}

func (s *Service) endpointForCaller(ctx context.Context, caller *mock.User, id string) (*mock.Endpoint, error) {
	if caller == nil {
		return nil, apierr.Unauthorized("authentication required")
	}
	e, err := s.store.EndpointByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.NotFound("mock endpoint not found")
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if err := access.CanAccess(e.CreatedBy, caller); err != nil {
		return nil, err
	}
	return e, nil
}

// resolveExpiry turns an option name into an absolute instant from a fresh
// clock reading. Empty selects the default option.
func (s *Service) resolveExpiry(option string) (time.Time, error) {
	opt := mock.DefaultExpiration
	if option != "" {
		parsed, err := mock.ParseExpirationOption(option)
		if err != nil {
			return time.Time{}, apierr.InvalidArgument("%s", err)
		}
		opt = parsed
	}
	return s.now().UTC().Add(opt.Duration()), nil
}
