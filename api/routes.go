package api

import (
	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes registers the routes open to anonymous callers
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/healthz", handlers.healthHandler.healthz())

	r.Post("/auth/register", handlers.authHandler.register())
	r.Post("/auth/login", handlers.authHandler.login())

	r.Get("/projects", handlers.projectHandler.getAllProjects())
	r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
	r.Get("/projects/{projectID}/like/check", handlers.likeHandler.checkLike())
}

// setupAuthenticatedRoutes registers the routes that need a signed-in caller
func setupAuthenticatedRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/auth/me", handlers.authHandler.me())
		r.Post("/auth/logout", handlers.authHandler.logout())

		// Project Handler endpoints
		r.Post("/projects", handlers.projectHandler.createProject())
		r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())

		// Like Handler endpoints
		r.Post("/projects/{projectID}/like", handlers.likeHandler.toggleLike())
		r.Delete("/projects/{projectID}/like", handlers.likeHandler.unlike())
	})
}
