package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mockbay/mockbay/pkg/mock"
)

const userColumns = "id, username, email, password_hash, enabled, roles, created_at"

func (s *SQLiteStore) CreateUser(ctx context.Context, u *mock.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Enabled, encodeRoles(u.Roles), timeTo(u.CreatedAt))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (*mock.User, error) {
	return s.userBy(ctx, "id = ?", id)
}

func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (*mock.User, error) {
	return s.userBy(ctx, "username = ?", username)
}

func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (*mock.User, error) {
	return s.userBy(ctx, "email = ?", email)
}

func (s *SQLiteStore) userBy(ctx context.Context, where string, arg any) (*mock.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*mock.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*mock.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*mock.User, error) {
	var u mock.User
	var roles, createdAt string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Enabled, &roles, &createdAt); err != nil {
		return nil, err
	}
	u.Roles = decodeRoles(roles)
	t, err := timeFrom(createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return &u, nil
}

// Roles are stored as a comma-joined list; the set is small and closed.
func encodeRoles(roles []mock.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func decodeRoles(s string) []mock.Role {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	roles := make([]mock.Role, len(parts))
	for i, p := range parts {
		roles[i] = mock.Role(p)
	}
	return roles
}
