package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marcosklein04/alquileres-ai/internal/config"
	"github.com/marcosklein04/alquileres-ai/internal/transport/middleware"
)

// RouterDeps bundles everything the HTTP router needs.
type RouterDeps struct {
	Contracts     *ContractsHandler
	Notifications *NotificationsHandler
	Health        *HealthHandler
	Logger        *slog.Logger
	ServerCfg     config.ServerConfig
	CORSCfg       config.CORSConfig
}

// NewRouter builds the chi router with the full middleware chain:
// RequestID, Logger, Recovery, CORS, RateLimit.
func NewRouter(deps RouterDeps) (http.Handler, *middleware.RateLimiter) {
	limiter := middleware.NewRateLimiter(time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.CORS(deps.CORSCfg))
	r.Use(limiter.Limit(deps.ServerCfg.RateLimitPerMin))

	r.Get("/live", deps.Health.Live)
	r.Get("/ready", deps.Health.Ready)
	r.Get("/health", deps.Health.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", deps.Contracts.Ping)

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", deps.Contracts.CreateFromText)
			r.Post("/manual", deps.Contracts.CreateManual)
			r.Get("/", deps.Contracts.List)
			r.Get("/list", deps.Contracts.ListClassified)
			r.Get("/{id}", deps.Contracts.Get)
			r.Patch("/{id}/renewal", deps.Contracts.UpdateRenewal)
			r.Patch("/{id}/status", deps.Contracts.UpdateStatus)
		})

		r.Get("/alerts/contracts", deps.Contracts.Alerts)

		r.Post("/notifications/run", deps.Notifications.Run)
	})

	return r, limiter
}
