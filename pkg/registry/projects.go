package registry

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/access"
	"github.com/mockbay/mockbay/pkg/apierr"
	"github.com/mockbay/mockbay/pkg/mock"
)

// CreateProjectInput carries a new project definition.
type CreateProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateProject registers a project owned by the caller. Project names are
// globally unique.
func (s *Service) CreateProject(ctx context.Context, caller *mock.User, in CreateProjectInput) (*mock.Project, error) {
	if caller == nil {
		return nil, apierr.Unauthorized("authentication required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.InvalidArgument("project name is required")
	}

	p := &mock.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: in.Description,
		CreatedBy:   caller.ID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apierr.Conflict("project name already exists")
		}
		return nil, apierr.Internal(err)
	}
	s.log.Info("project created", "id", p.ID, "name", p.Name)
	return p, nil
}

// Projects lists projects visible to the caller: all for admins, otherwise
// only the caller's own.
func (s *Service) Projects(ctx context.Context, caller *mock.User) ([]*mock.Project, error) {
	if caller == nil {
		return nil, apierr.Unauthorized("authentication required")
	}
	var (
		projects []*mock.Project
		err      error
	)
	if caller.IsAdmin() {
		projects, err = s.store.ListProjects(ctx)
	} else {
		projects, err = s.store.ListProjectsByOwner(ctx, caller.ID)
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return projects, nil
}

// Project returns a single project the caller can access.
func (s *Service) Project(ctx context.Context, caller *mock.User, id string) (*mock.Project, error) {
	return s.projectForCaller(ctx, caller, id)
}

// ProjectByName returns a single project by its unique name, subject to the
// same access rule as Project.
func (s *Service) ProjectByName(ctx context.Context, caller *mock.User, name string) (*mock.Project, error) {
	if caller == nil {
		return nil, apierr.Unauthorized("authentication required")
	}
	p, err := s.store.ProjectByName(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.NotFound("project not found")
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if err := access.CanAccess(p.CreatedBy, caller); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProjectInput is a partial update: nil fields are left unchanged.
type UpdateProjectInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// UpdateProject applies a partial update to a project the caller can access.
func (s *Service) UpdateProject(ctx context.Context, caller *mock.User, id string, in UpdateProjectInput) (*mock.Project, error) {
	p, err := s.projectForCaller(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apierr.InvalidArgument("project name is required")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}

	if err := s.store.UpdateProject(ctx, p); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			return nil, apierr.Conflict("project name already exists")
		case errors.Is(err, storage.ErrNotFound):
			return nil, apierr.NotFound("project not found")
		default:
			return nil, apierr.Internal(err)
		}
	}
	return p, nil
}

// DeleteProject removes a project and, by cascade, its endpoints.
func (s *Service) DeleteProject(ctx context.Context, caller *mock.User, id string) error {
	if _, err := s.projectForCaller(ctx, caller, id); err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apierr.NotFound("project not found")
		}
		return apierr.Internal(err)
	}
	s.log.Info("project deleted", "id", id)
	return nil
}

func (s *Service) projectForCaller(ctx context.Context, caller *mock.User, id string) (*mock.Project, error) {
	if caller == nil {
		return nil, apierr.Unauthorized("authentication required")
	}
	p, err := s.store.ProjectByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.NotFound("project not found")
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if err := access.CanAccess(p.CreatedBy, caller); err != nil {
		return nil, err
	}
	return p, nil
}
