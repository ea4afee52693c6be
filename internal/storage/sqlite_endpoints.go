package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mockbay/mockbay/pkg/mock"
)

const endpointColumns = `id, name, description, path, method, status_code, content_type,
	body, delay_seconds, requires_jwt, generated_jwt, expires_at, project_id, created_by, created_at`

func (s *SQLiteStore) CreateEndpoint(ctx context.Context, e *mock.Endpoint) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO endpoints (`+endpointColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.Description, e.Path, string(e.Method), e.StatusCode, e.ContentType,
			e.Body, e.DelaySeconds, e.RequiresJWT, e.GeneratedJWT, timeTo(e.ExpiresAt),
			e.ProjectID, e.CreatedBy, timeTo(e.CreatedAt))
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("insert endpoint: %w", err)
		}
		return insertHeaders(ctx, tx, e.ID, e.Headers)
	})
}

func (s *SQLiteStore) EndpointByID(ctx context.Context, id string) (*mock.Endpoint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+endpointColumns+` FROM endpoints WHERE id = ?`, id)
	e, err := scanEndpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query endpoint: %w", err)
	}
	if err := s.loadHeaders(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *SQLiteStore) ListEndpointsByProject(ctx context.Context, projectID string) ([]*mock.Endpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+endpointColumns+` FROM endpoints WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []*mock.Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan endpoint: %w", err)
		}
		endpoints = append(endpoints, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, e := range endpoints {
		if err := s.loadHeaders(ctx, e); err != nil {
			return nil, err
		}
	}
	return endpoints, nil
}

func (s *SQLiteStore) UpdateEndpoint(ctx context.Context, e *mock.Endpoint) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE endpoints SET name = ?, description = ?, path = ?, method = ?, status_code = ?,
			 content_type = ?, body = ?, delay_seconds = ?, requires_jwt = ?, generated_jwt = ?,
			 expires_at = ? WHERE id = ?`,
			e.Name, e.Description, e.Path, string(e.Method), e.StatusCode,
			e.ContentType, e.Body, e.DelaySeconds, e.RequiresJWT, e.GeneratedJWT,
			timeTo(e.ExpiresAt), e.ID)
		if err != nil {
			return fmt.Errorf("update endpoint: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update endpoint: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM endpoint_headers WHERE endpoint_id = ?`, e.ID); err != nil {
			return fmt.Errorf("clear endpoint headers: %w", err)
		}
		return insertHeaders(ctx, tx, e.ID, e.Headers)
	})
}

func (s *SQLiteStore) DeleteEndpoint(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM endpoints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) FindEndpoint(ctx context.Context, projectName, path string, method mock.Method) (*mock.Endpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+qualifiedEndpointColumns+` FROM endpoints e
		 JOIN projects p ON p.id = e.project_id
		 WHERE p.name = ? AND e.path = ? AND e.method = ?`,
		projectName, path, string(method))
	e, err := scanEndpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find endpoint: %w", err)
	}
	if err := s.loadHeaders(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

const qualifiedEndpointColumns = `e.id, e.name, e.description, e.path, e.method, e.status_code,
	e.content_type, e.body, e.delay_seconds, e.requires_jwt, e.generated_jwt, e.expires_at,
	e.project_id, e.created_by, e.created_at`

func (s *SQLiteStore) DeleteEndpointsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM endpoints WHERE expires_at < ?`, timeTo(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge expired endpoints: %w", err)
	}
	return res.RowsAffected()
}

func insertHeaders(ctx context.Context, tx *sql.Tx, endpointID string, headers []mock.Header) error {
	for i, h := range headers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO endpoint_headers (endpoint_id, position, key, value) VALUES (?, ?, ?, ?)`,
			endpointID, i, h.Key, h.Value); err != nil {
			return fmt.Errorf("insert endpoint header: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadHeaders(ctx context.Context, e *mock.Endpoint) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM endpoint_headers WHERE endpoint_id = ? ORDER BY position`, e.ID)
	if err != nil {
		return fmt.Errorf("load endpoint headers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h mock.Header
		if err := rows.Scan(&h.Key, &h.Value); err != nil {
			return fmt.Errorf("scan endpoint header: %w", err)
		}
		e.Headers = append(e.Headers, h)
	}
	return rows.Err()
}

func scanEndpoint(row rowScanner) (*mock.Endpoint, error) {
	var e mock.Endpoint
	var method, expiresAt, createdAt string
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Path, &method, &e.StatusCode,
		&e.ContentType, &e.Body, &e.DelaySeconds, &e.RequiresJWT, &e.GeneratedJWT,
		&expiresAt, &e.ProjectID, &e.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	e.Method = mock.Method(method)

	var err error
	if e.ExpiresAt, err = timeFrom(expiresAt); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = timeFrom(createdAt); err != nil {
		return nil, err
	}
	return &e, nil
}
