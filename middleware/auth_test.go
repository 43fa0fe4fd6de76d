package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/repositories"
	"github.com/matchday/attendance-system/services"
)

type stubProvider struct {
	identity *services.ProviderIdentity
	err      error
}

func (p *stubProvider) VerifyToken(ctx context.Context, accessToken string) (*services.ProviderIdentity, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.identity, nil
}

func (p *stubProvider) SignOut(ctx context.Context, accessToken string) error {
	return nil
}

type stubUserRepo struct {
	users map[string]*models.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) CreateTeamMember(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (r *stubUserRepo) FindByNameAndNumber(ctx context.Context, displayName string, jerseyNumber *int) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (r *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) List(ctx context.Context) ([]models.User, error) {
	return nil, nil
}

func newTestResolver(provider services.IdentityProvider, users repositories.UserRepository, codec *services.TeamSessionCodec) *Resolver {
	return NewResolver(provider, users, codec, slog.Default())
}

// identityEcho records the identity the middleware resolved for assertions.
func identityEcho(captured **models.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, err := IdentityFromContext(r.Context()); err == nil {
			*captured = identity
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateTeamSessionCookie(t *testing.T) {
	codec := services.NewTeamSessionCodec("secret")
	users := &stubUserRepo{users: map[string]*models.User{
		"user-1": {ID: "user-1", DisplayName: "Alice"},
	}}
	resolver := newTestResolver(&stubProvider{err: services.ErrProviderTokenInvalid}, users, codec)

	token, _, err := codec.Issue("user-1", "Alice", time.Now())
	require.NoError(t, err)

	var captured *models.Identity
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: services.TeamSessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	resolver.Authenticate(identityEcho(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, models.AuthMethodTeamSession, captured.Method)
}

func TestAuthenticateTamperedCookieIsCleared(t *testing.T) {
	codec := services.NewTeamSessionCodec("secret")
	users := &stubUserRepo{users: map[string]*models.User{}}
	resolver := newTestResolver(&stubProvider{}, users, codec)

	token, _, err := services.NewTeamSessionCodec("other-secret").Issue("user-1", "Alice", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: services.TeamSessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	resolver.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, services.TeamSessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthenticateCookieForDeletedUser(t *testing.T) {
	codec := services.NewTeamSessionCodec("secret")
	users := &stubUserRepo{users: map[string]*models.User{}}
	resolver := newTestResolver(&stubProvider{}, users, codec)

	token, _, err := codec.Issue("gone-user", "Ghost", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: services.TeamSessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	resolver.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestAuthenticateBearerToken(t *testing.T) {
	codec := services.NewTeamSessionCodec("secret")
	users := &stubUserRepo{users: map[string]*models.User{
		"provider-user": {ID: "provider-user", DisplayName: "Bob", IsAdmin: true},
	}}
	provider := &stubProvider{identity: &services.ProviderIdentity{UserID: "provider-user", Email: "bob@example.com"}}
	resolver := newTestResolver(provider, users, codec)

	var captured *models.Identity
	var capturedToken string
	handler := resolver.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, err := IdentityFromContext(r.Context()); err == nil {
			captured = identity
		}
		capturedToken = ProviderTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "provider-user", captured.UserID)
	assert.True(t, captured.IsAdmin)
	assert.Equal(t, models.AuthMethodProvider, captured.Method)
	assert.Equal(t, "valid-token", capturedToken)
}

func TestAuthenticateBearerWinsOverCookie(t *testing.T) {
	codec := services.NewTeamSessionCodec("secret")
	users := &stubUserRepo{users: map[string]*models.User{
		"provider-user": {ID: "provider-user", DisplayName: "Bob"},
		"cookie-user":   {ID: "cookie-user", DisplayName: "Alice"},
	}}
	provider := &stubProvider{identity: &services.ProviderIdentity{UserID: "provider-user"}}
	resolver := newTestResolver(provider, users, codec)

	cookieToken, _, err := codec.Issue("cookie-user", "Alice", time.Now())
	require.NoError(t, err)

	var captured *models.Identity
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	req.AddCookie(&http.Cookie{Name: services.TeamSessionCookieName, Value: cookieToken})
	rec := httptest.NewRecorder()

	resolver.Authenticate(identityEcho(&captured)).ServeHTTP(rec, req)

	require.NotNil(t, captured)
	assert.Equal(t, "provider-user", captured.UserID)
}

func TestAuthenticateInvalidBearerDoesNotFallBack(t *testing.T) {
	codec := services.NewTeamSessionCodec("secret")
	users := &stubUserRepo{users: map[string]*models.User{
		"cookie-user": {ID: "cookie-user", DisplayName: "Alice"},
	}}
	resolver := newTestResolver(&stubProvider{err: services.ErrProviderTokenInvalid}, users, codec)

	cookieToken, _, err := codec.Issue("cookie-user", "Alice", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	req.AddCookie(&http.Cookie{Name: services.TeamSessionCookieName, Value: cookieToken})
	rec := httptest.NewRecorder()

	resolver.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateProviderAccountWithoutProfile(t *testing.T) {
	codec := services.NewTeamSessionCodec("secret")
	users := &stubUserRepo{users: map[string]*models.User{}}
	provider := &stubProvider{identity: &services.ProviderIdentity{UserID: "new-user", Email: "new@example.com"}}
	resolver := newTestResolver(provider, users, codec)

	// Authenticate lets the request through carrying only the provider
	// identity, so profile setup is reachable.
	var sawProvider bool
	handler := resolver.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := IdentityFromContext(r.Context())
		assert.Error(t, err)
		if _, err := ProviderIdentityFromContext(r.Context()); err == nil {
			sawProvider = true
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/profile", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawProvider)

	// RequireProfile blocks the same request everywhere else.
	blocked := resolver.Authenticate(resolver.RequireProfile(http.NotFoundHandler()))
	req = httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec = httptest.NewRecorder()
	blocked.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	codec := services.NewTeamSessionCodec("secret")
	users := &stubUserRepo{users: map[string]*models.User{
		"admin-1":  {ID: "admin-1", DisplayName: "Coach", IsAdmin: true},
		"member-1": {ID: "member-1", DisplayName: "Alice"},
	}}
	resolver := newTestResolver(&stubProvider{}, users, codec)

	handler := resolver.Authenticate(resolver.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	for userID, wantStatus := range map[string]int{
		"admin-1":  http.StatusOK,
		"member-1": http.StatusForbidden,
	} {
		token, _, err := codec.Issue(userID, "x", time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/events", nil)
		req.AddCookie(&http.Cookie{Name: services.TeamSessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, wantStatus, rec.Code, "user %s", userID)
	}
}

func TestAuthenticateNoCredentials(t *testing.T) {
	resolver := newTestResolver(&stubProvider{}, &stubUserRepo{users: map[string]*models.User{}}, services.NewTeamSessionCodec("secret"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	resolver.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
