// metrics.go — Prometheus HTTP метрики:
// sa_http_requests_total, sa_http_request_duration_seconds.
// Нормализация путей ограничивает кардинальность лейблов.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sa_http_requests_total",
			Help: "Общее количество HTTP-запросов к архиву скриншотов",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sa_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware собирает количество и длительность запросов по endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			wrapped := newStatusRecorder(w)
			next.ServeHTTP(wrapped, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath заменяет id скриншота на {id}.
// /screenshots/6f1c... → /screenshots/{id}
// /screenshots/6f1c.../download → /screenshots/{id}/download
// Неизвестные пути сводятся к "other".
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/screenshots", "/stats", "/tags", "/openapi.yaml":
		return path
	}

	const prefix = "/screenshots/"
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok {
		return "other"
	}
	id, suffix, hasSuffix := strings.Cut(rest, "/")
	switch {
	case id == "":
		return "other"
	case !hasSuffix:
		return "/screenshots/{id}"
	case suffix == "download":
		return "/screenshots/{id}/download"
	}

	return "other"
}
