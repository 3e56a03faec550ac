package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures a Chi router with all API routes
func (s *Server) SetupRouter() http.Handler {
	r := chi.NewRouter()

	// Built-in Chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Custom middleware
	r.Use(s.LoggingMiddleware)

	// Health check and metrics stay open
	r.Get("/api/health", s.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.config.RequireAuth {
			r.Use(AuthMiddleware(s.config.Callers))
		}
		r.Use(RequestSizeLimitMiddleware(s.maxBodyBytes()))

		r.Get("/api/status", s.StatusHandler)

		// Call routes
		r.Route("/api/call", func(r chi.Router) {
			r.Post("/dial", s.DialHandler)
			r.Post("/hangup", s.HangupHandler)
			r.Get("/status", s.CallStatusHandler)
		})

		// Mute routes
		r.Route("/api/mute", func(r chi.Router) {
			r.Get("/", s.MuteStateHandler)
			r.Put("/microphone", s.MicrophoneMuteHandler)
			r.Put("/camera", s.CameraMuteHandler)
		})

		r.Post("/api/camera/move/{direction}", s.CameraMoveHandler)
		r.Post("/api/controls", s.ControlsHandler)
	})

	return r
}

func (s *Server) maxBodyBytes() int64 {
	maxBytes := int64(s.config.MaxBodySizeKB) * 1024
	if maxBytes <= 0 {
		maxBytes = 64 * 1024
	}
	return maxBytes
}
