package registry

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/apierr"
	"github.com/mockbay/mockbay/pkg/mock"
)

// CreateUserInput carries a new identity. Roles defaults to the user role
// when empty.
type CreateUserInput struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Roles    []mock.Role `json:"roles"`
}

// CreateUser registers an identity with a bcrypt-hashed password. Username
// and email must both be unused.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*mock.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apierr.InvalidArgument("username is required")
	}
	if in.Email == "" {
		return nil, apierr.InvalidArgument("email is required")
	}
	if in.Password == "" {
		return nil, apierr.InvalidArgument("password is required")
	}
	roles := in.Roles
	if len(roles) == 0 {
		roles = []mock.Role{mock.RoleUser}
	}
	for _, r := range roles {
		if r != mock.RoleAdmin && r != mock.RoleUser {
			return nil, apierr.InvalidArgument("unknown role: %s", r)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	u := &mock.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Enabled:      true,
		Roles:        roles,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apierr.Conflict("username or email already exists")
		}
		return nil, apierr.Internal(err)
	}
	s.log.Info("user created", "id", u.ID, "username", u.Username)
	return u, nil
}

// Authenticate checks a username/password pair. All failures, including a
// disabled account, report the same generic message.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*mock.User, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if !u.Enabled {
		return nil, apierr.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apierr.Unauthorized("invalid credentials")
	}
	return u, nil
}

// User returns a single identity by id.
func (s *Service) User(ctx context.Context, id string) (*mock.User, error) {
	u, err := s.store.UserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.NotFound("user not found")
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return u, nil
}

// UserByUsername returns a single identity by username.
func (s *Service) UserByUsername(ctx context.Context, username string) (*mock.User, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.NotFound("user not found")
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return u, nil
}

// Users lists all identities.
func (s *Service) Users(ctx context.Context) ([]*mock.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return users, nil
}
