package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohort_engine_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cohort_engine_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	templateRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohort_engine_template_requests_total",
			Help: "Preset template requests by resolved rule.",
		},
		[]string{"rule_id"},
	)

	completionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohort_engine_completions_total",
			Help: "Model completion requests by outcome.",
		},
		[]string{"outcome"},
	)

	completionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cohort_engine_completion_duration_seconds",
			Help:    "End-to-end model completion latency, parse included.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		templateRequestsTotal,
		completionsTotal,
		completionDurationSeconds,
	)
}

// Metrics records request count and latency per route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDurationSeconds.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}

// Completion outcomes reported by ObserveCompletion.
const (
	CompletionOK         = "ok"
	CompletionModelError = "model_error"
	CompletionParseError = "parse_error"
)

// ObserveCompletion records one model completion attempt.
func ObserveCompletion(outcome string, elapsed time.Duration) {
	completionsTotal.WithLabelValues(outcome).Inc()
	completionDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveTemplateRequest records one preset dispatch by resolved rule id.
func ObserveTemplateRequest(ruleID string) {
	templateRequestsTotal.WithLabelValues(ruleID).Inc()
}
