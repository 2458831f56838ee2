package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"esgpulse/internal/config"
	"esgpulse/internal/infrastructure"
	customMiddleware "esgpulse/internal/middleware"
	"esgpulse/internal/notify"
	"esgpulse/internal/services"
)

// RouterDeps are the collaborators the HTTP surface needs.
type RouterDeps struct {
	Config  *config.Config
	Health  *services.HealthService
	Process *services.ProcessService
	Metrics *infrastructure.Metrics
	Hub     *notify.Hub
	Logger  *slog.Logger
}

// NewRouter builds the chi router: health surface, processing endpoint,
// Prometheus scrape endpoint, and the websocket event feed.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.StructuredLogger(deps.Logger))
	r.Use(customMiddleware.Recoverer(deps.Logger))

	healthHandler := NewHealthHandler(deps.Health, deps.Logger)
	processHandler := NewProcessHandler(deps.Process, deps.Config.Server.MaxUploadBytes, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Post("/process", processHandler.Process)
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler)
	}

	if deps.Hub != nil {
		r.Get("/ws", deps.Hub.ServeWS)
	}

	return r
}
