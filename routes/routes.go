package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matchday/attendance-system/handlers"
	"github.com/matchday/attendance-system/middleware"
	"github.com/matchday/attendance-system/monitoring"
)

// SetupRoutes mounts the full API surface on the router.
//
// Three tiers: public endpoints (login, logout, the app title for the login
// page), endpoints for any resolved identity, and admin-only management
// endpoints. Profile setup sits between the first two: a verified provider
// account without a users row may only create its profile.
func SetupRoutes(
	router *chi.Mux,
	resolver *middleware.Resolver,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	eventHandler *handlers.EventHandler,
	attendanceHandler *handlers.AttendanceHandler,
	settingsHandler *handlers.SettingsHandler,
	notifyHandler *handlers.NotifyHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(monitoring.Instrument)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", monitoring.Handler())

	router.Post("/auth/team-login", authHandler.TeamLogin)
	router.Post("/auth/logout", authHandler.Logout)
	router.Get("/settings", settingsHandler.Get)

	router.Group(func(r chi.Router) {
		r.Use(resolver.Authenticate)

		// Profile setup is the only endpoint a verified provider account
		// without a profile may reach.
		r.Post("/profile", userHandler.SetupProfile)

		r.Group(func(r chi.Router) {
			r.Use(resolver.RequireProfile)

			r.Get("/me", userHandler.Me)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Post("/profile/avatar", userHandler.UploadAvatar)
			r.Get("/users", userHandler.List)

			r.Get("/events", eventHandler.List)
			r.Get("/events/{eventID}", eventHandler.GetDetail)
			r.Get("/events/{eventID}/attendances", attendanceHandler.ListByEvent)
			r.Put("/events/{eventID}/attendance", attendanceHandler.SetStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(resolver.RequireAdmin)

			r.Post("/events", eventHandler.Create)
			r.Put("/events/{eventID}", eventHandler.Update)
			r.Delete("/events/{eventID}", eventHandler.Delete)
			r.Put("/events/{eventID}/guest-count", attendanceHandler.SetGuestCount)

			r.Put("/settings/title", settingsHandler.UpdateTitle)
			r.Put("/settings/password", settingsHandler.UpdatePassword)

			r.Post("/notify", notifyHandler.Trigger)
		})
	})
}
