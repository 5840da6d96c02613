package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/movilworks/portfolio-backend/config"
)

// setupRoutes wires the public surface and the cookie-gated admin surface.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, settings config.Settings) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		// Public endpoints
		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/config/hero-video", handlers.heroHandler.publicHeroVideo())
		r.Get("/p/{shareID}", handlers.shareHandler.resolveShareLink())

		// Admin session endpoints
		r.Post("/admin/login", handlers.authHandler.login())
		r.Post("/admin/logout", handlers.authHandler.logout())
		r.Get("/admin/session", handlers.authHandler.session())

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/projects", handlers.projectHandler.createProject())
			r.Put("/projects/{index}", handlers.projectHandler.updateProject())
			r.Delete("/projects/{index}", handlers.projectHandler.deleteProject())

			r.Get("/admin/hero-video", handlers.heroHandler.getHeroVideo())
			r.Post("/admin/hero-video", handlers.heroHandler.setHeroVideo())
			r.Delete("/admin/hero-video", handlers.heroHandler.clearHeroVideo())
		})
	})

	// Locally stored assets
	if settings.UploadDir != "" {
		fileServer := http.FileServer(http.Dir(settings.UploadDir))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))
	}
}
