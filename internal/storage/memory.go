package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mockbay/mockbay/pkg/mock"
)

// MemoryStore is a thread-safe in-memory implementation of Store.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]*mock.User
	projects  map[string]*mock.Project
	endpoints map[string]*mock.Endpoint
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]*mock.User),
		projects:  make(map[string]*mock.Project),
		endpoints: make(map[string]*mock.Endpoint),
	}
}

// --- Users ---

func (s *MemoryStore) CreateUser(_ context.Context, u *mock.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (s *MemoryStore) UserByID(_ context.Context, id string) (*mock.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (*mock.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UserByEmail(_ context.Context, email string) (*mock.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]*mock.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*mock.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, cloneUser(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

// --- Projects ---

func (s *MemoryStore) CreateProject(_ context.Context, p *mock.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.projects {
		if existing.Name == p.Name {
			return ErrDuplicate
		}
	}
	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

func (s *MemoryStore) ProjectByID(_ context.Context, id string) (*mock.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) ProjectByName(_ context.Context, name string) (*mock.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListProjects(_ context.Context) ([]*mock.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*mock.Project, 0, len(s.projects))
	for _, p := range s.projects {
		cp := *p
		result = append(result, &cp)
	}
	sortProjects(result)
	return result, nil
}

func (s *MemoryStore) ListProjectsByOwner(_ context.Context, ownerID string) ([]*mock.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*mock.Project
	for _, p := range s.projects {
		if p.CreatedBy == ownerID {
			cp := *p
			result = append(result, &cp)
		}
	}
	sortProjects(result)
	return result, nil
}

func (s *MemoryStore) UpdateProject(_ context.Context, p *mock.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return ErrNotFound
	}
	for _, existing := range s.projects {
		if existing.ID != p.ID && existing.Name == p.Name {
			return ErrDuplicate
		}
	}
	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)
	// Cascade: a project owns its endpoints.
	for eid, e := range s.endpoints {
		if e.ProjectID == id {
			delete(s.endpoints, eid)
		}
	}
	return nil
}

// --- Endpoints ---

func (s *MemoryStore) CreateEndpoint(_ context.Context, e *mock.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[e.ProjectID]; !ok {
		return ErrNotFound
	}
	s.endpoints[e.ID] = cloneEndpoint(e)
	return nil
}

func (s *MemoryStore) EndpointByID(_ context.Context, id string) (*mock.Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.endpoints[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneEndpoint(e), nil
}

func (s *MemoryStore) ListEndpointsByProject(_ context.Context, projectID string) ([]*mock.Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*mock.Endpoint
	for _, e := range s.endpoints {
		if e.ProjectID == projectID {
			result = append(result, cloneEndpoint(e))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) UpdateEndpoint(_ context.Context, e *mock.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.endpoints[e.ID]; !ok {
		return ErrNotFound
	}
	s.endpoints[e.ID] = cloneEndpoint(e)
	return nil
}

func (s *MemoryStore) DeleteEndpoint(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.endpoints[id]; !ok {
		return ErrNotFound
	}
	delete(s.endpoints, id)
	return nil
}

func (s *MemoryStore) FindEndpoint(_ context.Context, projectName, path string, method mock.Method) (*mock.Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var project *mock.Project
	for _, p := range s.projects {
		if p.Name == projectName {
			project = p
			break
		}
	}
	if project == nil {
		return nil, ErrNotFound
	}
	for _, e := range s.endpoints {
		if e.ProjectID == project.ID && e.Path == path && e.Method == method {
			return cloneEndpoint(e), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) DeleteEndpointsExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, e := range s.endpoints {
		if e.ExpiresAt.Before(cutoff) {
			delete(s.endpoints, id)
			n++
		}
	}
	return n, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

func sortProjects(ps []*mock.Project) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}

func cloneUser(u *mock.User) *mock.User {
	cp := *u
	cp.Roles = append([]mock.Role(nil), u.Roles...)
	return &cp
}

func cloneEndpoint(e *mock.Endpoint) *mock.Endpoint {
	cp := *e
	cp.Headers = append([]mock.Header(nil), e.Headers...)
	return &cp
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
