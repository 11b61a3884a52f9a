package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/isdelr/taskflow-be/internal/api"
	"github.com/isdelr/taskflow-be/internal/auth"
	"github.com/isdelr/taskflow-be/internal/config"
	"github.com/isdelr/taskflow-be/internal/janitor"
	"github.com/isdelr/taskflow-be/internal/logger"
	"github.com/isdelr/taskflow-be/internal/services"
	"github.com/isdelr/taskflow-be/internal/store"
	"github.com/isdelr/taskflow-be/internal/store/mongostore"
	"github.com/isdelr/taskflow-be/internal/store/sqlitestore"
	"github.com/isdelr/taskflow-be/internal/upload"
	"github.com/isdelr/taskflow-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	// Set up the store
	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer st.Close()

	// Ensure the upload directory exists
	avatars, err := upload.New(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare upload directory")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(st.Events, hub, cfg.DBTimeout)
	userService := services.NewUserService(st.Users, avatars, eventService, cfg.DBTimeout)
	projectService := services.NewProjectService(st, eventService, cfg.DBTimeout)
	taskService := services.NewTaskService(st, eventService, cfg.DBTimeout)

	if cfg.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := userService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed admin user")
		}
		cancel()
	}

	// Set up and run the upload janitor
	sweeper, err := janitor.New(avatars, st.Users, cfg.JanitorSchedule, cfg.DBTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure upload janitor")
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(api.Deps{
		Store:        st,
		Users:        userService,
		Projects:     projectService,
		Tasks:        taskService,
		Events:       eventService,
		Issuer:       auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpire),
		Avatars:      avatars,
		Hub:          hub,
		UploadDir:    cfg.UploadDir,
		CORSOrigins:  cfg.CORSOrigins,
		ExposeErrors: cfg.ExposeErrors,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}

// openStore picks the backend from the DATABASE_URL scheme.
func openStore(cfg *config.Config) (*store.Store, error) {
	if strings.HasPrefix(cfg.DatabaseURL, "mongodb://") || strings.HasPrefix(cfg.DatabaseURL, "mongodb+srv://") {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("Using MongoDB store")
		return mongostore.Open(ctx, cfg.DatabaseURL)
	}
	log.Info().Str("dsn", cfg.DatabaseURL).Msg("Using SQLite store")
	return sqlitestore.Open(cfg.DatabaseURL)
}
