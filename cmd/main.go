package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/matchday/attendance-system/config"
	"github.com/matchday/attendance-system/db"
	"github.com/matchday/attendance-system/handlers"
	"github.com/matchday/attendance-system/middleware"
	"github.com/matchday/attendance-system/repositories"
	api "github.com/matchday/attendance-system/routes"
	"github.com/matchday/attendance-system/services"
	"github.com/matchday/attendance-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Avatar storage is optional: without R2 credentials uploads return 503
	// and everything else keeps working.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 not configured, avatar uploads disabled")
	}

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	attendanceRepo := repositories.NewPostgresAttendanceRepository(dbConn)
	settingsRepo := repositories.NewPostgresTeamSettingsRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)

	sessionCodec := services.NewTeamSessionCodec(cfg.TeamSessionSecret)
	identityProvider := services.NewHTTPIdentityProvider(cfg.AuthProviderURL, cfg.AuthProviderAPIKey)

	authService := services.NewAuthService(userRepo, settingsRepo, sessionCodec)
	userService := services.NewUserService(userRepo, uploader)
	notifyService := services.NewNotifyService(eventRepo, notificationRepo, cfg.LineNotifyToken, "", logger)
	eventService := services.NewEventService(eventRepo, attendanceRepo, notifyService, logger)
	attendanceService := services.NewAttendanceService(attendanceRepo, eventRepo)
	settingsService := services.NewSettingsService(settingsRepo)

	resolver := middleware.NewResolver(identityProvider, userRepo, sessionCodec, logger)

	authHandler := handlers.NewAuthHandler(authService, identityProvider, cfg.IsProduction(), logger)
	userHandler := handlers.NewUserHandler(userService)
	eventHandler := handlers.NewEventHandler(eventService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	notifyHandler := handlers.NewNotifyHandler(notifyService)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		resolver,
		authHandler,
		userHandler,
		eventHandler,
		attendanceHandler,
		settingsHandler,
		notifyHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if err := server.Close(); err != nil {
				logger.Error("forced server close failed", slog.Any("error", err))
			}
		}
	}

	logger.Info("server stopped")
}
