package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	recoveryActivations *prometheus.CounterVec
	recoveryRedirects   prometheus.Counter
	recoveryExpired     prometheus.Counter
	recoveryCleared     prometheus.Counter
)

// RegisterMetrics inicializa las métricas HTTP y de recovery.
// Devuelve el handler para /metrics. Idempotente.
func RegisterMetrics(reg prometheus.Registerer) http.Handler {
	metricsOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lumify_http_requests_total",
			Help: "Total de requests HTTP por método, path y status.",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lumify_http_request_duration_seconds",
			Help:    "Duración de requests HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		recoveryActivations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lumify_recovery_activations_total",
			Help: "Activaciones de password recovery por fuente de señal.",
		}, []string{"source"})

		recoveryRedirects = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumify_recovery_repair_redirects_total",
			Help: "Redirects de reparación: recovery code entregado en el path equivocado.",
		})

		recoveryExpired = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumify_recovery_expired_links_total",
			Help: "Links de recovery vencidos reportados por el backend.",
		})

		recoveryCleared = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumify_recovery_cleared_total",
			Help: "Flujos de recovery completados (password actualizado).",
		})

		reg.MustRegister(httpRequestsTotal, httpRequestDuration,
			recoveryActivations, recoveryRedirects, recoveryExpired, recoveryCleared)
	})
	return promhttp.Handler()
}

// ObserveRequest registra una request completada.
func ObserveRequest(method, path string, status int, d time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// CountRecoveryActivation registra una activación por fuente.
func CountRecoveryActivation(source string) {
	if recoveryActivations != nil {
		recoveryActivations.WithLabelValues(source).Inc()
	}
}

// CountRepairRedirect registra un redirect de reparación.
func CountRepairRedirect() {
	if recoveryRedirects != nil {
		recoveryRedirects.Inc()
	}
}

// CountExpiredLink registra un link vencido.
func CountExpiredLink() {
	if recoveryExpired != nil {
		recoveryExpired.Inc()
	}
}

// CountRecoveryCleared registra un flujo completado.
func CountRecoveryCleared() {
	if recoveryCleared != nil {
		recoveryCleared.Inc()
	}
}
