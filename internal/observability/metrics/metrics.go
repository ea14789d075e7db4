// Package metrics содержит Prometheus-метрики FitCheck: счётчики чекинов
// и статистику HTTP-запросов.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// Metrics хранит зарегистрированные коллекторы.
type Metrics struct {
	checkIns        *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New создаёт метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checkIns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitcheck_checkins_total",
				Help: "Total number of check-in attempts",
			},
			[]string{"kind", "outcome", "reason", "access_path"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitcheck_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fitcheck_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
	reg.MustRegister(m.checkIns, m.requestsTotal, m.requestDuration)
	return m
}

// Record учитывает результат чекина. Реализует checkin.Recorder.
func (m *Metrics) Record(kind models.CheckInKind, outcome models.CheckInOutcome) {
	result := "success"
	switch {
	case outcome.Reason == models.ReasonError:
		result = "error"
	case !outcome.Success:
		result = "failed"
	}
	m.checkIns.WithLabelValues(string(kind), result, string(outcome.Reason), string(outcome.AccessPath)).Inc()
}

// Middleware собирает статистику запросов. Путь берётся из шаблона маршрута chi,
// чтобы ID в URL не порождали новые серии.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
