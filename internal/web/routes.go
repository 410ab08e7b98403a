package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/web/handlers"
	"github.com/kozaktomas/face-attendance/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	configHandler := handlers.NewConfigHandler(s.deps.Config)
	galleryHandler := handlers.NewGalleryHandler(s.deps.Galleries)
	eventsHandler := handlers.NewEventsHandler(s.deps.Events, s.deps.Galleries, s.deps.StartedAt)
	enrollHandler := handlers.NewEnrollHandler(s.deps.Commands, s.log)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/config", configHandler.Get)
		r.Get("/status", eventsHandler.Status)
		r.Get("/gallery", galleryHandler.List)
		r.Get("/events", eventsHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(s.deps.Config.Web.APIToken))
			r.Post("/enroll", enrollHandler.Create)
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "not found"}` + "\n"))
	})
}
