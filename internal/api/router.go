package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Madra/internal/explorer"
)

func NewRouter(x *explorer.Explorer, adminToken string, requestsPerMinute int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(requestsPerMinute))

	catalog := NewCatalogHandler(x)
	explore := NewExploreHandler(x, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", catalog.Categories)
		r.Get("/techniques", catalog.Techniques)
		r.Get("/techniques/{id}", catalog.Technique)
		r.Get("/techniques/{id}/frontier", catalog.Frontier)
		r.Get("/environments", catalog.Environments)
		r.Get("/environments/{id}", catalog.Environment)
		r.Get("/environments/{id}/rankings", catalog.Rankings)

		r.Post("/compositions/normalize", explore.Normalize)
		r.Post("/match", explore.Match)
		r.Post("/simulate", explore.Simulate)
		r.Post("/sweep", explore.Sweep)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Post("/catalog/reload", catalog.Reload)
		})
	})

	return r
}

// NewMetricsRouter serves /health and the metrics gathered by g.
func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
