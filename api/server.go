package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpupo63/project-showcase-backend/auth"
	"github.com/rpupo63/project-showcase-backend/config"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/services"
	"github.com/rpupo63/project-showcase-backend/storage"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// NewServer wires the services and routes. uploader may be nil, in which
// case screenshot uploads answer 503.
func NewServer(cfg config.Config, db database.Database, issuer *auth.Issuer, uploader storage.Uploader) Server {
	startupTime := time.Now()

	deps := dependencies{
		config:      cfg,
		db:          db,
		identity:    services.NewIdentityService(db, issuer, cfg.Session.BcryptCost),
		projects:    services.NewProjectService(db),
		likes:       services.NewLikeService(db),
		uploader:    uploader,
		startupTime: startupTime,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:      newRouter(deps),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return Server{server, startupTime}
}

func newRouter(deps dependencies) *chi.Mux {
	handlers := initializeHandlers(deps)
	authMiddleware := newAuthMiddleware(deps.identity, deps.config.Session.CookieName)

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware)
	chiRouter.Use(corsMiddleware(deps.config.AcceptedOrigins))
	chiRouter.Use(requestTimeout(deps.config.RequestTimeout))
	chiRouter.Use(authMiddleware.identify)

	setupPublicRoutes(chiRouter, handlers)
	setupAuthenticatedRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

// Start serves until the listener closes. A graceful shutdown is not an error.
func (s Server) Start() error {
	log.Info().Msgf("Server started on: %s", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s Server) ShutdownGracefully(timeout time.Duration) error {
	log.Info().Msg("Gracefully shutting down...")

	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefulCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
		return err
	}
	log.Info().Msg("HttpServer gracefully shut down")
	return nil
}
