// Package fitcheck собирает зависимости и маршруты HTTP-сервера FitCheck.
package fitcheck

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/fitcheck/internal/graphql"
	"github.com/magabrotheeeer/fitcheck/internal/http/handlers/checkin/class"
	"github.com/magabrotheeeer/fitcheck/internal/http/handlers/checkin/club"
	"github.com/magabrotheeeer/fitcheck/internal/http/handlers/health"
	"github.com/magabrotheeeer/fitcheck/internal/observability/metrics"
	"github.com/magabrotheeeer/fitcheck/internal/services/checkin"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, reader graphql.Reader, service *checkin.Service,
	m *metrics.Metrics, gatherer prometheus.Gatherer, pinger health.Pinger) error {
	gqlHandler, err := graphql.NewHandler(logger, reader, service)
	if err != nil {
		return err
	}

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		m.Middleware,
	)

	r.Handle("/graphql", gqlHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/checkins/club", club.New(logger, service).ServeHTTP)
		r.Post("/checkins/class", class.New(logger, service).ServeHTTP)
	})

	r.Get("/health", health.New(logger, pinger).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return nil
}
