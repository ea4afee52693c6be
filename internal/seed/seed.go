// Package seed installs the demo data set on first start: an admin account,
// a sample project, and one mock endpoint under it.
package seed

import (
	"context"
	"log/slog"

	"github.com/mockbay/mockbay/pkg/apierr"
	"github.com/mockbay/mockbay/pkg/mock"
	"github.com/mockbay/mockbay/pkg/registry"
)

const usersBody = `[
  { "id": 1, "name": "Ana López", "email": "ana.lopez@example.com" },
  { "id": 2, "name": "Carlos Pérez", "email": "carlos.perez@example.com" }
]`

// Run is idempotent: records that already exist are left alone.
func Run(ctx context.Context, svc *registry.Service, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	admin, err := svc.UserByUsername(ctx, "admin")
	if apierr.Is(err, apierr.KindNotFound) {
		admin, err = svc.CreateUser(ctx, registry.CreateUserInput{
			Username: "admin",
			Email:    "admin@mockbay.local",
			Password: "admin",
			Roles:    []mock.Role{mock.RoleAdmin},
		})
		if err == nil {
			log.Info("seeded admin user")
		}
	}
	if err != nil {
		return err
	}

	project, err := svc.CreateProject(ctx, admin, registry.CreateProjectInput{
		Name:        "Usuarios",
		Description: "Proyecto de pruebas para endpoints de usuarios.",
	})
	switch {
	case apierr.Is(err, apierr.KindConflict):
		// A previous run created the project; the endpoint may still be
		// missing if that run was interrupted.
		project, err = svc.ProjectByName(ctx, admin, "Usuarios")
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		log.Info("seeded demo project", "name", project.Name)
	}

	_, err = svc.FindForDispatch(ctx, "Usuarios", "/api/users", "GET")
	if err == nil {
		return nil
	}
	if !apierr.Is(err, apierr.KindNotFound) {
		return err
	}

	_, err = svc.CreateEndpoint(ctx, admin, registry.CreateEndpointInput{
		Name:        "Listado de usuarios",
		Description: "Devuelve un listado fijo de usuarios de ejemplo.",
		Path:        "/api/users",
		Method:      "GET",
		StatusCode:  200,
		ContentType: "application/json",
		Body:        usersBody,
		Expiration:  string(mock.ExpireOneMonth),
		ProjectID:   project.ID,
	})
	if err != nil {
		return err
	}
	log.Info("seeded demo endpoint", "project", project.Name, "path", "/api/users")
	return nil
}
