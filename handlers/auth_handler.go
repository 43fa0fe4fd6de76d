package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/matchday/attendance-system/middleware"
	"github.com/matchday/attendance-system/services"
)

type AuthHandler struct {
	authService   services.AuthService
	provider      services.IdentityProvider
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(authService services.AuthService, provider services.IdentityProvider, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		provider:      provider,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// TeamLogin handles POST /auth/team-login.
func (h *AuthHandler) TeamLogin(w http.ResponseWriter, r *http.Request) {
	var input services.TeamLoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.authService.TeamLogin(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     services.TeamSessionCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	response := jsonResponse{
		"success": true,
		"user": jsonResponse{
			"id":            result.User.ID,
			"nickname":      result.User.DisplayName,
			"jersey_number": result.User.JerseyNumber,
		},
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Logout handles POST /auth/logout. Idempotent: succeeds whether or not a
// session existed, so it is mounted outside the auth middleware and reads the
// bearer token itself. The provider-side sign-out is fire and forget.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearTeamSessionCookie(w)

	if token := bearerFromHeader(r); token != "" {
		go func(token string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.provider.SignOut(ctx, token); err != nil {
				h.logger.Warn("provider sign-out failed", slog.Any("error", err))
			}
		}(token)
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func bearerFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
