package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/myenglish-backend/internal/config"
	"github.com/heartmarshall/myenglish-backend/internal/transport/middleware"
)

// NewRouter assembles the chi router for the whole HTTP surface: health
// checks outside the middleware stack, the four core operations (spec §6)
// behind Recovery/RequestID/Logger/CORS/rate-limiting, and the Prometheus
// scrape endpoint when enabled.
func NewRouter(review *ReviewHandler, health *HealthHandler, cfg config.CORSConfig, metricsCfg config.MetricsConfig, limiter *middleware.RateLimiter, rlCfg config.RateLimitConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/live", health.Live)
	r.Get("/ready", health.Ready)
	r.Get("/health", health.Health)

	if metricsCfg.Enabled {
		r.Handle(metricsCfg.Path, promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(logger))
		r.Use(middleware.RequestID())
		r.Use(middleware.Logger(logger))
		r.Use(middleware.CORS(cfg))
		if limiter != nil && rlCfg.Enabled {
			r.Use(limiter.Limit(rlCfg.MaxPerMinute))
		}

		r.Route("/v1", func(r chi.Router) {
			r.Post("/sessions/next", review.NextSession)
			r.Post("/reviews", review.Reviews)
			r.Post("/reviews/undo", review.ReviewUndo)
			r.Post("/placement/start", review.PlacementStart)
			r.Post("/placement/answer", review.PlacementAnswer)
			r.Get("/dashboard", review.Dashboard)
		})
	})

	return r
}
