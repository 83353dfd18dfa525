package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	rateLimitedTotal   *prometheus.CounterVec

	evaluationsTotal          *prometheus.CounterVec
	evaluationDurationSeconds *prometheus.HistogramVec
	chatTurnsTotal            *prometheus.CounterVec
	sessionsActive            prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the workspace service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codecraft",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codecraft",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codecraft",
			Name:      "http_errors_total",
			Help:      "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codecraft",
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by a per-caller budget.",
		}, []string{"limiter"})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codecraft",
			Subsystem: "workspace",
			Name:      "evaluations_total",
			Help:      "Completed run and submit requests by outcome.",
		}, []string{"kind", "outcome"})

		evaluationDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codecraft",
			Subsystem: "workspace",
			Name:      "evaluation_duration_seconds",
			Help:      "Time between issuing a run or submit and applying its result.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"kind"})

		chatTurnsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codecraft",
			Subsystem: "workspace",
			Name:      "chat_turns_total",
			Help:      "Assistant turns by outcome.",
		}, []string{"outcome"})

		sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "codecraft",
			Subsystem: "workspace",
			Name:      "sessions_active",
			Help:      "Open problem workspaces.",
		})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, rateLimitedTotal,
			evaluationsTotal, evaluationDurationSeconds, chatTurnsTotal, sessionsActive,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RateLimited counts requests rejected by a named limiter.
func RateLimited() *prometheus.CounterVec {
	RegisterMetrics()
	return rateLimitedTotal
}

// Evaluations counts completed evaluations, labelled by kind (run, submit) and outcome.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// EvaluationDuration observes evaluation round trips.
func EvaluationDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return evaluationDurationSeconds
}

// ChatTurns counts assistant turns.
func ChatTurns() *prometheus.CounterVec {
	RegisterMetrics()
	return chatTurnsTotal
}

// SessionsActive tracks open workspaces.
func SessionsActive() prometheus.Gauge {
	RegisterMetrics()
	return sessionsActive
}

// MetricsHandler serves the scrape endpoint, negotiating the OpenMetrics format when asked.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
