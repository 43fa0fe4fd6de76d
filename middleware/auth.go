package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/repositories"
	"github.com/matchday/attendance-system/services"
)

// Resolver turns request credentials into a resolved identity before any
// page-specific logic runs. Two carriers are recognized: a provider bearer
// token and the team_session cookie. Only one path is honored per request;
// the bearer token wins when both are present.
type Resolver struct {
	provider services.IdentityProvider
	users    repositories.UserRepository
	sessions *services.TeamSessionCodec
	logger   *slog.Logger
}

func NewResolver(
	provider services.IdentityProvider,
	users repositories.UserRepository,
	sessions *services.TeamSessionCodec,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		provider: provider,
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// Authenticate resolves the request's identity and stores it in the context.
// Provider accounts without a users row pass through with only the provider
// identity set (the profile-setup state); RequireProfile blocks them from
// everything except profile setup. Unauthenticated requests get a 401 and any
// stale team cookie is cleared.
func (rs *Resolver) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			rs.resolveProvider(w, r, next, token)
			return
		}

		if cookie, err := r.Cookie(services.TeamSessionCookieName); err == nil {
			rs.resolveTeamSession(w, r, next, cookie.Value)
			return
		}

		unauthenticated(w)
	})
}

func (rs *Resolver) resolveProvider(w http.ResponseWriter, r *http.Request, next http.Handler, token string) {
	providerIdentity, err := rs.provider.VerifyToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrProviderTokenInvalid) {
			unauthenticated(w)
			return
		}
		rs.logger.Error("identity provider check failed", slog.Any("error", err))
		providerUnavailable(w)
		return
	}

	ctx := withProviderIdentity(r.Context(), providerIdentity)
	ctx = withProviderToken(ctx, token)

	user, err := rs.users.GetByID(r.Context(), providerIdentity.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Verified account, no profile yet. Let the request through with
			// the provider identity only; RequireProfile gates the rest.
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		rs.logger.Error("failed to load user for provider identity", slog.Any("error", err))
		serverError(w)
		return
	}

	identity := &models.Identity{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		Method:      models.AuthMethodProvider,
		User:        user,
	}
	next.ServeHTTP(w, r.WithContext(withIdentity(ctx, identity)))
}

func (rs *Resolver) resolveTeamSession(w http.ResponseWriter, r *http.Request, next http.Handler, token string) {
	session, err := rs.sessions.Decode(token)
	if err != nil {
		// Malformed, forged or expired: treat as absent and tell the client
		// to drop it.
		ClearTeamSessionCookie(w)
		unauthenticated(w)
		return
	}

	user, err := rs.users.GetByID(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// The user behind the session has been deleted.
			ClearTeamSessionCookie(w)
			unauthenticated(w)
			return
		}
		rs.logger.Error("failed to load user for team session", slog.Any("error", err))
		serverError(w)
		return
	}

	identity := &models.Identity{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		Method:      models.AuthMethodTeamSession,
		User:        user,
	}
	next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
}

// RequireProfile rejects provider accounts that have not completed profile
// setup. Everything behind it can rely on a full identity in the context.
func (rs *Resolver) RequireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := IdentityFromContext(r.Context()); err != nil {
			profileSetupRequired(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin allows only resolved admin identities through.
func (rs *Resolver) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := IdentityFromContext(r.Context())
		if err != nil {
			profileSetupRequired(w)
			return
		}
		if !identity.IsAdmin {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ClearTeamSessionCookie instructs the client to drop the team_session cookie.
func ClearTeamSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     services.TeamSessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
