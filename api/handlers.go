package api

import (
	"time"

	"github.com/rpupo63/project-showcase-backend/config"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/services"
	"github.com/rpupo63/project-showcase-backend/storage"
)

// dependencies groups what the handlers are built from
type dependencies struct {
	config      config.Config
	db          database.Database
	identity    *services.IdentityService
	projects    *services.ProjectService
	likes       *services.LikeService
	uploader    storage.Uploader
	startupTime time.Time
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps dependencies) *routeHandlers {
	return &routeHandlers{
		authHandler:    newAuthHandler(deps.identity, deps.config.Session.CookieName, deps.config.Session.CookieSecure),
		projectHandler: newProjectHandler(deps.projects, deps.uploader, deps.config.MaxUploadBytes),
		likeHandler:    newLikeHandler(deps.likes),
		healthHandler:  newHealthHandler(deps.db, deps.startupTime),
	}
}
