package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/memequiz-backend/internal/pkg/fallback"
)

// Metrics owns a private registry so tests and multiple apps never collide.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	PipelineAttempt *prometheus.CounterVec
	PipelineLatency *prometheus.HistogramVec
	PipelineResult  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memequiz_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memequiz_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		PipelineAttempt: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memequiz_pipeline_attempts_total",
			Help: "Provider attempts by pipeline, candidate and outcome",
		}, []string{"pipeline", "candidate", "outcome"}),
		PipelineLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memequiz_pipeline_attempt_seconds",
			Help:    "Latency of a single provider attempt",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"pipeline", "candidate"}),
		PipelineResult: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memequiz_pipeline_results_total",
			Help: "Final pipeline results by the source that answered",
		}, []string{"pipeline", "source"}),
	}
}

// AttemptObserver returns a fallback.Policy.OnAttempt hook for pipeline.
// A nil receiver yields a no-op.
func (m *Metrics) AttemptObserver(pipeline string) func(fallback.Attempt) {
	if m == nil {
		return func(fallback.Attempt) {}
	}
	return func(a fallback.Attempt) {
		m.PipelineAttempt.WithLabelValues(pipeline, a.Candidate, string(a.Outcome)).Inc()
		m.PipelineLatency.WithLabelValues(pipeline, a.Candidate).Observe(a.Elapsed.Seconds())
	}
}

func (m *Metrics) ObserveResult(pipeline, source string) {
	if m == nil {
		return
	}
	m.PipelineResult.WithLabelValues(pipeline, source).Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
