package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuzutube/gateway/app"
	"github.com/yuzutube/gateway/handlers"
	"github.com/yuzutube/gateway/internal/observability"
	"github.com/yuzutube/gateway/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(deps.Logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.Config.Server.WriteTimeout))

	// CORS middleware
	// Local frontends are only trusted outside production.
	origins := []string{"https://*"}
	if !deps.Config.IsProduction() {
		origins = append(origins, "http://localhost:*")
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	health := handlers.NewHealthHandler(deps.Catalog, deps.Config.Invidious.Timeout, deps.Logger.Named("health"))
	catalog := handlers.NewCatalogHandler(deps.Catalog, deps.Logger.Named("catalog"))

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if deps.Config.Observability.MetricsEnabled {
		r.Handle(deps.Config.Observability.MetricsPath, promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handlers.StatusHandler(deps))

		r.Get("/browse", catalog.HandleBrowse)
		r.Get("/watch", catalog.HandleWatch)
		r.Get("/search", catalog.HandleSearch)
		r.Get("/channel", catalog.HandleChannel)
		r.Get("/playlist", catalog.HandlePlaylist)
	})

	// 404 and 405 handlers
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
