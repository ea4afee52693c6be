package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/apierr"
	"github.com/mockbay/mockbay/pkg/mock"
	"github.com/mockbay/mockbay/pkg/token"
)

var signingKey = []byte("0123456789abcdef0123456789abcdef")

type fixture struct {
	svc    *Service
	issuer *token.Issuer
	owner  *mock.User
	admin  *mock.User
	other  *mock.User
	proj   *mock.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	issuer, err := token.NewIssuer(signingKey, nil)
	require.NoError(t, err)

	svc := New(storage.NewMemoryStore(), issuer, nil)

	owner, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "alice", Email: "alice@example.com", Password: "secret",
	})
	require.NoError(t, err)
	admin, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "root", Email: "root@example.com", Password: "secret",
		Roles: []mock.Role{mock.RoleAdmin},
	})
	require.NoError(t, err)
	other, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "bob", Email: "bob@example.com", Password: "secret",
	})
	require.NoError(t, err)

	proj, err := svc.CreateProject(ctx, owner, CreateProjectInput{Name: "demo"})
	require.NoError(t, err)

	return &fixture{svc: svc, issuer: issuer, owner: owner, admin: admin, other: other, proj: proj}
}

func validEndpointInput(projectID string) CreateEndpointInput {
	return CreateEndpointInput{
		Name:        "list users",
		Path:        "api/users",
		Method:      "get",
		StatusCode:  200,
		ContentType: "application/json",
		Body:        `[]`,
		ProjectID:   projectID,
	}
}

func TestCreateEndpointNormalizesAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := time.Now()
	e, err := f.svc.CreateEndpoint(ctx, f.owner, validEndpointInput(f.proj.ID))
	require.NoError(t, err)

	assert.Equal(t, "/api/users", e.Path, "path gets a leading slash")
	assert.Equal(t, mock.MethodGet, e.Method, "method is upcased")
	assert.Empty(t, e.GeneratedJWT)

	// Default expiration is one year out.
	wantExpiry := before.Add(365 * 24 * time.Hour)
	assert.WithinDuration(t, wantExpiry, e.ExpiresAt, time.Minute)
}

func TestCreateEndpointWithJWTCachesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validEndpointInput(f.proj.ID)
	in.RequiresJWT = true
	in.Expiration = "ONE_WEEK"

	e, err := f.svc.CreateEndpoint(ctx, f.owner, in)
	require.NoError(t, err)
	require.NotEmpty(t, e.GeneratedJWT)

	claims, err := f.issuer.Verify(e.GeneratedJWT)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject, "token subject is the creator")
	assert.WithinDuration(t, e.ExpiresAt, claims.ExpiresAt, time.Second,
		"token expiry tracks the endpoint expiry")
}

func TestCreateEndpointRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validEndpointInput(f.proj.ID)
	in.Method = "HEAD"
	_, err := f.svc.CreateEndpoint(ctx, f.owner, in)
	assert.True(t, apierr.Is(err, apierr.KindInvalidArgument), "HEAD is not in the enum")

	in = validEndpointInput(f.proj.ID)
	in.Expiration = "NEXT_TUESDAY"
	_, err = f.svc.CreateEndpoint(ctx, f.owner, in)
	assert.True(t, apierr.Is(err, apierr.KindInvalidArgument))

	in = validEndpointInput(f.proj.ID)
	in.StatusCode = 99
	_, err = f.svc.CreateEndpoint(ctx, f.owner, in)
	assert.True(t, apierr.Is(err, apierr.KindInvalidArgument))

	in = validEndpointInput("no-such-project")
	_, err = f.svc.CreateEndpoint(ctx, f.owner, in)
	assert.True(t, apierr.Is(err, apierr.KindNotFound))

	_, err = f.svc.CreateEndpoint(ctx, f.other, validEndpointInput(f.proj.ID))
	assert.True(t, apierr.Is(err, apierr.KindPermissionDenied),
		"non-owner cannot add endpoints to a foreign project")

	_, err = f.svc.CreateEndpoint(ctx, f.admin, validEndpointInput(f.proj.ID))
	assert.NoError(t, err, "admin can add endpoints anywhere")
}

func TestUpdateEndpointDelayOnlyLeavesCredentialAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validEndpointInput(f.proj.ID)
	in.RequiresJWT = true
	e, err := f.svc.CreateEndpoint(ctx, f.owner, in)
	require.NoError(t, err)

	delay := 3
	updated, err := f.svc.UpdateEndpoint(ctx, f.owner, e.ID, UpdateEndpointInput{DelaySeconds: &delay})
	require.NoError(t, err)

	assert.Equal(t, 3, updated.DelaySeconds)
	assert.Equal(t, e.GeneratedJWT, updated.GeneratedJWT, "token untouched")
	assert.True(t, e.ExpiresAt.Equal(updated.ExpiresAt), "expiry untouched")
}

func TestUpdateEndpointExpirationRegeneratesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validEndpointInput(f.proj.ID)
	in.RequiresJWT = true
	in.Expiration = "ONE_YEAR"
	e, err := f.svc.CreateEndpoint(ctx, f.owner, in)
	require.NoError(t, err)

	expiration := "ONE_HOUR"
	updated, err := f.svc.UpdateEndpoint(ctx, f.owner, e.ID, UpdateEndpointInput{Expiration: &expiration})
	require.NoError(t, err)

	assert.NotEqual(t, e.GeneratedJWT, updated.GeneratedJWT, "token regenerated")
	assert.True(t, updated.ExpiresAt.Before(e.ExpiresAt))

	claims, err := f.issuer.Verify(updated.GeneratedJWT)
	require.NoError(t, err)
	assert.WithinDuration(t, updated.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestUpdateEndpointFlagOffClearsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validEndpointInput(f.proj.ID)
	in.RequiresJWT = true
	e, err := f.svc.CreateEndpoint(ctx, f.owner, in)
	require.NoError(t, err)
	require.NotEmpty(t, e.GeneratedJWT)

	off := false
	updated, err := f.svc.UpdateEndpoint(ctx, f.owner, e.ID, UpdateEndpointInput{RequiresJWT: &off})
	require.NoError(t, err)
	assert.Empty(t, updated.GeneratedJWT)

	// Flipping back on issues a fresh token lazily.
	on := true
	updated, err = f.svc.UpdateEndpoint(ctx, f.owner, e.ID, UpdateEndpointInput{RequiresJWT: &on})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.GeneratedJWT)
}

func TestUpdateEndpointAccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateEndpoint(ctx, f.owner, validEndpointInput(f.proj.ID))
	require.NoError(t, err)

	name := "renamed"
	_, err = f.svc.UpdateEndpoint(ctx, f.other, e.ID, UpdateEndpointInput{Name: &name})
	assert.True(t, apierr.Is(err, apierr.KindPermissionDenied))

	_, err = f.svc.UpdateEndpoint(ctx, f.admin, e.ID, UpdateEndpointInput{Name: &name})
	assert.NoError(t, err)

	err = f.svc.DeleteEndpoint(ctx, f.other, e.ID)
	assert.True(t, apierr.Is(err, apierr.KindPermissionDenied))
	assert.NoError(t, f.svc.DeleteEndpoint(ctx, f.owner, e.ID))
}

func TestIssueEndpointToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateEndpoint(ctx, f.owner, validEndpointInput(f.proj.ID))
	require.NoError(t, err)

	_, err = f.svc.IssueEndpointToken(ctx, nil, e.ID)
	assert.True(t, apierr.Is(err, apierr.KindUnauthorized))

	_, err = f.svc.IssueEndpointToken(ctx, f.other, "missing")
	assert.True(t, apierr.Is(err, apierr.KindNotFound))

	resp, err := f.svc.IssueEndpointToken(ctx, f.other, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+resp.Token, resp.Bearer)

	claims, err := f.issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Subject, "token bound to the caller, not the owner")
	assert.WithinDuration(t, e.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestIssueEndpointTokenExpiredConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateEndpoint(ctx, f.owner, validEndpointInput(f.proj.ID))
	require.NoError(t, err)

	// Age the endpoint past its expiry.
	f.svc.now = func() time.Time { return e.ExpiresAt.Add(time.Minute) }
	_, err = f.svc.IssueEndpointToken(ctx, f.owner, e.ID)
	assert.True(t, apierr.Is(err, apierr.KindConflict))
}

func TestFindForDispatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateEndpoint(ctx, f.owner, validEndpointInput(f.proj.ID))
	require.NoError(t, err)

	e, err := f.svc.FindForDispatch(ctx, "demo", "api/users", "GET")
	require.NoError(t, err, "raw path is normalized before lookup")
	assert.Equal(t, "/api/users", e.Path)

	_, err = f.svc.FindForDispatch(ctx, "demo", "/api/users", "HEAD")
	assert.True(t, apierr.Is(err, apierr.KindInvalidArgument))

	_, err = f.svc.FindForDispatch(ctx, "demo", "/nope", "GET")
	require.True(t, apierr.Is(err, apierr.KindNotFound))
	assert.Equal(t, "mock endpoint not found for GET /nope", apierr.Message(err),
		"message embeds method and path only")

	// Percent signs in the path must come through verbatim, not as
	// half-interpreted format verbs.
	_, err = f.svc.FindForDispatch(ctx, "demo", "/50%off", "GET")
	require.True(t, apierr.Is(err, apierr.KindNotFound))
	assert.Equal(t, "mock endpoint not found for GET /50%off", apierr.Message(err))
}

func TestProjectScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProject(ctx, f.other, CreateProjectInput{Name: "bobs"})
	require.NoError(t, err)

	mine, err := f.svc.Projects(ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "demo", mine[0].Name)

	all, err := f.svc.Projects(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.Project(ctx, f.other, f.proj.ID)
	assert.True(t, apierr.Is(err, apierr.KindPermissionDenied), "403 stays distinct from 404")
	_, err = f.svc.Project(ctx, f.owner, "missing")
	assert.True(t, apierr.Is(err, apierr.KindNotFound))

	_, err = f.svc.CreateProject(ctx, f.other, CreateProjectInput{Name: "demo"})
	assert.True(t, apierr.Is(err, apierr.KindConflict))

	p, err := f.svc.ProjectByName(ctx, f.owner, "demo")
	require.NoError(t, err)
	assert.Equal(t, f.proj.ID, p.ID)
	_, err = f.svc.ProjectByName(ctx, f.other, "demo")
	assert.True(t, apierr.Is(err, apierr.KindPermissionDenied))
	_, err = f.svc.ProjectByName(ctx, f.owner, "ghost")
	assert.True(t, apierr.Is(err, apierr.KindNotFound))
}

func TestProjectDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateEndpoint(ctx, f.owner, validEndpointInput(f.proj.ID))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProject(ctx, f.owner, f.proj.ID))
	_, err = f.svc.Endpoint(ctx, f.owner, e.ID)
	assert.True(t, apierr.Is(err, apierr.KindNotFound))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Authenticate(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, u.ID)

	_, err = f.svc.Authenticate(ctx, "alice", "wrong")
	assert.True(t, apierr.Is(err, apierr.KindUnauthorized))
	_, err = f.svc.Authenticate(ctx, "ghost", "secret")
	assert.True(t, apierr.Is(err, apierr.KindUnauthorized))
}

func TestCreateUserDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, CreateUserInput{
		Username: "alice", Email: "new@example.com", Password: "x",
	})
	assert.True(t, apierr.Is(err, apierr.KindConflict))

	_, err = f.svc.CreateUser(ctx, CreateUserInput{
		Username: "newname", Email: "alice@example.com", Password: "x",
	})
	assert.True(t, apierr.Is(err, apierr.KindConflict))
}
