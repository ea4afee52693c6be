// Package mock defines the domain types for project-scoped mock endpoints:
// the HTTP method and expiration-option enums, the endpoint definition with
// its ordered headers, and the project and user records that own them.
package mock

import (
	"fmt"
	"strings"
	"time"
)

// Method is the closed set of HTTP methods a mock endpoint can be bound to.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
)

// Methods lists all supported methods in a stable order.
func Methods() []Method {
	return []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodOptions}
}

// ParseMethod parses a method token. The token is matched case-insensitively
// against the closed enum; anything else (including HEAD, CONNECT, TRACE) is
// rejected.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToUpper(strings.TrimSpace(s))) {
	case MethodGet:
		return MethodGet, nil
	case MethodPost:
		return MethodPost, nil
	case MethodPut:
		return MethodPut, nil
	case MethodPatch:
		return MethodPatch, nil
	case MethodDelete:
		return MethodDelete, nil
	case MethodOptions:
		return MethodOptions, nil
	default:
		return "", fmt.Errorf("unsupported HTTP method: %q", s)
	}
}

// ExpirationOption is a named relative duration used only at write time to
// compute an absolute expiry as now + duration. Only the resulting instant is
// persisted.
type ExpirationOption string

const (
	ExpireOneHour  ExpirationOption = "ONE_HOUR"
	ExpireOneDay   ExpirationOption = "ONE_DAY"
	ExpireOneWeek  ExpirationOption = "ONE_WEEK"
	ExpireOneMonth ExpirationOption = "ONE_MONTH"
	ExpireOneYear  ExpirationOption = "ONE_YEAR"
)

// DefaultExpiration is used when no option is supplied at creation time.
const DefaultExpiration = ExpireOneYear

// Duration returns the relative duration behind the option.
func (o ExpirationOption) Duration() time.Duration {
	switch o {
	case ExpireOneHour:
		return time.Hour
	case ExpireOneDay:
		return 24 * time.Hour
	case ExpireOneWeek:
		return 7 * 24 * time.Hour
	case ExpireOneMonth:
		return 30 * 24 * time.Hour
	case ExpireOneYear:
		return 365 * 24 * time.Hour
	default:
		return 0
	}
}

// ParseExpirationOption parses an option name case-insensitively.
func ParseExpirationOption(s string) (ExpirationOption, error) {
	switch ExpirationOption(strings.ToUpper(strings.TrimSpace(s))) {
	case ExpireOneHour:
		return ExpireOneHour, nil
	case ExpireOneDay:
		return ExpireOneDay, nil
	case ExpireOneWeek:
		return ExpireOneWeek, nil
	case ExpireOneMonth:
		return ExpireOneMonth, nil
	case ExpireOneYear:
		return ExpireOneYear, nil
	default:
		return "", fmt.Errorf("unsupported expiration option: %q", s)
	}
}

// Header is a single response header pair. Headers are kept as an ordered
// slice rather than a map so insertion order survives storage round-trips;
// when applied to a response, later duplicate keys overwrite earlier ones
// (last write wins).
type Header struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Endpoint is a stored mock definition bound to (project, path, method).
type Endpoint struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Path is always normalized (leading slash, trimmed).
	Path   string `json:"path" yaml:"path"`
	Method Method `json:"method" yaml:"method"`

	StatusCode  int      `json:"statusCode" yaml:"statusCode"`
	ContentType string   `json:"contentType" yaml:"contentType"`
	Body        string   `json:"body,omitempty" yaml:"body,omitempty"`
	Headers     []Header `json:"headers,omitempty" yaml:"headers,omitempty"`

	DelaySeconds int `json:"delaySeconds" yaml:"delaySeconds"`

	// RequiresJWT gates dispatch behind a bearer token from the issuer.
	// GeneratedJWT caches the most recently issued token for the endpoint;
	// it is only populated while RequiresJWT is true.
	RequiresJWT  bool   `json:"requiresJwt" yaml:"requiresJwt"`
	GeneratedJWT string `json:"generatedJwt,omitempty" yaml:"generatedJwt,omitempty"`

	ExpiresAt time.Time `json:"expiresAt" yaml:"expiresAt"`

	ProjectID string    `json:"projectId" yaml:"projectId"`
	CreatedBy string    `json:"createdBy" yaml:"createdBy"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Expired reports whether the endpoint's expiration instant is at or before
// the given time.
func (e *Endpoint) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// Validate checks the invariants a definition must hold before storage.
func (e *Endpoint) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("endpoint name is required")
	}
	if _, err := ParseMethod(string(e.Method)); err != nil {
		return err
	}
	if e.StatusCode < 100 || e.StatusCode > 599 {
		return fmt.Errorf("status code %d out of range 100-599", e.StatusCode)
	}
	if e.ContentType == "" {
		return fmt.Errorf("content type is required")
	}
	if e.DelaySeconds < 0 {
		return fmt.Errorf("delay seconds must be >= 0")
	}
	if e.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	return nil
}

// Project owns zero or more mock endpoints. Deleting a project cascades to
// its endpoints.
type Project struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedBy   string    `json:"createdBy" yaml:"createdBy"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// Role is the closed set of identity roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is an identity that owns projects and endpoints.
type User struct {
	ID           string    `json:"id" yaml:"id"`
	Username     string    `json:"username" yaml:"username"`
	Email        string    `json:"email" yaml:"email"`
	PasswordHash string    `json:"-" yaml:"-"`
	Enabled      bool      `json:"enabled" yaml:"enabled"`
	Roles        []Role    `json:"roles" yaml:"roles"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
