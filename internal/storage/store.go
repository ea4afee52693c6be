// Package storage provides the durable stores behind the endpoint registry:
// users, projects, and mock endpoints. Two implementations exist, a
// thread-safe in-memory store used by tests and the --in-memory flag, and
// the SQLite store used in normal operation.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mockbay/mockbay/pkg/mock"
)

// Sentinel errors shared by all implementations.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("record already exists")
)

// UserStore persists identities.
type UserStore interface {
	CreateUser(ctx context.Context, u *mock.User) error
	UserByID(ctx context.Context, id string) (*mock.User, error)
	UserByUsername(ctx context.Context, username string) (*mock.User, error)
	UserByEmail(ctx context.Context, email string) (*mock.User, error)
	ListUsers(ctx context.Context) ([]*mock.User, error)
}

// ProjectStore persists projects. DeleteProject cascades to the project's
// endpoints.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *mock.Project) error
	ProjectByID(ctx context.Context, id string) (*mock.Project, error)
	ProjectByName(ctx context.Context, name string) (*mock.Project, error)
	ListProjects(ctx context.Context) ([]*mock.Project, error)
	ListProjectsByOwner(ctx context.Context, ownerID string) ([]*mock.Project, error)
	UpdateProject(ctx context.Context, p *mock.Project) error
	DeleteProject(ctx context.Context, id string) error
}

// EndpointStore persists mock endpoint definitions.
type EndpointStore interface {
	CreateEndpoint(ctx context.Context, e *mock.Endpoint) error
	EndpointByID(ctx context.Context, id string) (*mock.Endpoint, error)
	ListEndpointsByProject(ctx context.Context, projectID string) ([]*mock.Endpoint, error)
	UpdateEndpoint(ctx context.Context, e *mock.Endpoint) error
	DeleteEndpoint(ctx context.Context, id string) error

	// FindEndpoint is the dispatch-time lookup by project name, normalized
	// path, and method. It resolves at most one match.
	FindEndpoint(ctx context.Context, projectName, path string, method mock.Method) (*mock.Endpoint, error)

	// DeleteEndpointsExpiredBefore removes endpoints whose expiry is older
	// than cutoff, returning how many were removed. Used by the janitor.
	DeleteEndpointsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store is the combined persistence surface.
type Store interface {
	UserStore
	ProjectStore
	EndpointStore
	Close() error
}
