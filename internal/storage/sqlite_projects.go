package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mockbay/mockbay/pkg/mock"
)

const projectColumns = "id, name, description, created_by, created_at"

func (s *SQLiteStore) CreateProject(ctx context.Context, p *mock.Project) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.CreatedBy, timeTo(p.CreatedAt))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ProjectByID(ctx context.Context, id string) (*mock.Project, error) {
	return s.projectBy(ctx, "id = ?", id)
}

func (s *SQLiteStore) ProjectByName(ctx context.Context, name string) (*mock.Project, error) {
	return s.projectBy(ctx, "name = ?", name)
}

func (s *SQLiteStore) projectBy(ctx context.Context, where string, arg any) (*mock.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+where, arg)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*mock.Project, error) {
	return s.listProjects(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, name`)
}

func (s *SQLiteStore) ListProjectsByOwner(ctx context.Context, ownerID string) ([]*mock.Project, error) {
	return s.listProjects(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE created_by = ? ORDER BY created_at DESC, name`, ownerID)
}

func (s *SQLiteStore) listProjects(ctx context.Context, query string, args ...any) ([]*mock.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*mock.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, p *mock.Project) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ? WHERE id = ?`,
		p.Name, p.Description, p.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	// Endpoint rows cascade via the foreign key.
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProject(row rowScanner) (*mock.Project, error) {
	var p mock.Project
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	t, err := timeFrom(createdAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = t
	return &p, nil
}
