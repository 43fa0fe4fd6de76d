package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/services"
)

type contextKey string

const (
	identityContextKey      contextKey = "identity"
	providerContextKey      contextKey = "provider_identity"
	providerTokenContextKey contextKey = "provider_token"
)

var (
	ErrNoIdentity         = errors.New("no resolved identity in context")
	ErrNoProviderIdentity = errors.New("no provider identity in context")
)

func withIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func withProviderIdentity(ctx context.Context, identity *services.ProviderIdentity) context.Context {
	return context.WithValue(ctx, providerContextKey, identity)
}

func withProviderToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, providerTokenContextKey, token)
}

// IdentityFromContext returns the fully resolved identity for the request.
func IdentityFromContext(ctx context.Context) (*models.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(*models.Identity)
	if !ok || identity == nil {
		return nil, ErrNoIdentity
	}
	return identity, nil
}

// ProviderIdentityFromContext returns the provider identity when the request
// came in over the provider path. Set even before profile setup.
func ProviderIdentityFromContext(ctx context.Context) (*services.ProviderIdentity, error) {
	identity, ok := ctx.Value(providerContextKey).(*services.ProviderIdentity)
	if !ok || identity == nil {
		return nil, ErrNoProviderIdentity
	}
	return identity, nil
}

// ProviderTokenFromContext returns the raw provider access token, used for
// the provider-side sign-out at logout.
func ProviderTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(providerTokenContextKey).(string)
	return token
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":` + `"` + message + `"}`))
}

func unauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "authentication required")
}

func profileSetupRequired(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "profile setup required")
}

func forbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "admin privileges required")
}

func serverError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func providerUnavailable(w http.ResponseWriter) {
	writeError(w, http.StatusBadGateway, "identity provider is unavailable")
}
