package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"prepflow/possync/internal/api"
	"prepflow/possync/internal/db"
	"prepflow/possync/internal/jobs"
	"prepflow/possync/internal/logging"
	"prepflow/possync/internal/metrics"
	"prepflow/possync/internal/middleware"
)

// RegisterRoutes builds the Chi router, wires dependencies, and starts the
// background jobs
func RegisterRoutes(upSince time.Time) http.Handler {
	r := chi.NewRouter()

	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	syncHandler := api.NewSyncHandler(deps)

	// Scheduled full syncs and the retry scheduler run for the lifetime of
	// the process
	jobs.InitializeJobs(
		context.Background(),
		deps.Repo.Config,
		deps.Repo.Log,
		deps.Services.Orchestrator,
	)

	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(deps.Services.Tokens))
		r.Use(middleware.RateLimitMiddleware)

		r.Post("/connect", syncHandler.Connect)
		r.Post("/disconnect", syncHandler.Disconnect)
		r.Post("/trigger", syncHandler.TriggerSync)
		r.Post("/cancel", syncHandler.CancelSync)
		r.Get("/status", syncHandler.Status)
		r.Get("/logs", syncHandler.Logs)
		r.Get("/stats", syncHandler.Stats)
		r.Get("/conflicts", syncHandler.Conflicts)
		r.Post("/conflicts/resolve", syncHandler.ResolveConflict)
		r.Post("/unlink", syncHandler.Unlink)
	})

	return r
}
