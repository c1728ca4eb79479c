package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the prometheus collectors used by the API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
	AnalysesTotal      *prometheus.CounterVec
	AnalysisDuration   prometheus.Histogram
	EnergyScore        prometheus.Histogram
	DetectionsTotal    *prometheus.CounterVec
	CacheLookups       *prometheus.CounterVec
	QuotaRejections    prometheus.Counter
	RateLimitDropped   *prometheus.CounterVec
	SideEffectFailures *prometheus.CounterVec
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greencode_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "greencode_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greencode_analyses_total",
			Help: "Total number of completed analyses.",
		}, []string{"language", "rating"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "greencode_analysis_duration_seconds",
			Help:    "Time spent running the analysis pipeline.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		EnergyScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "greencode_energy_score",
			Help:    "Distribution of computed energy scores.",
			Buckets: []float64{10, 20, 30, 40, 60, 80, 100, 150},
		}),
		DetectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greencode_detections_total",
			Help: "Total number of pattern detections by kind.",
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greencode_result_cache_lookups_total",
			Help: "Result cache lookups by outcome.",
		}, []string{"result"}),
		QuotaRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greencode_quota_rejections_total",
			Help: "Total number of analyses rejected by the monthly quota.",
		}),
		RateLimitDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greencode_ratelimit_dropped_total",
			Help: "Total number of requests dropped by the rate limiter.",
		}, []string{"group"}),
		SideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greencode_side_effect_failures_total",
			Help: "Best-effort side effects that failed, by effect.",
		}, []string{"effect"}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSec,
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.EnergyScore,
		m.DetectionsTotal,
		m.CacheLookups,
		m.QuotaRejections,
		m.RateLimitDropped,
		m.SideEffectFailures,
	)

	return m
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		startedAt := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(route, c.Request.Method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, c.Request.Method, status).Observe(time.Since(startedAt).Seconds())
	}
}

// ObserveAnalysis records one completed analysis.
func (m *Metrics) ObserveAnalysis(language, rating string, energyScore int, kinds []string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(language, rating).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
	m.EnergyScore.Observe(float64(energyScore))
	for _, k := range kinds {
		m.DetectionsTotal.WithLabelValues(k).Inc()
	}
}

// CacheLookup records a result cache outcome: hit, miss or error.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) QuotaRejected() {
	if m == nil {
		return
	}
	m.QuotaRejections.Inc()
}

func (m *Metrics) RateLimited(group string) {
	if m == nil {
		return
	}
	m.RateLimitDropped.WithLabelValues(group).Inc()
}

// SideEffectFailed records a failed best-effort step such as archive or publish.
func (m *Metrics) SideEffectFailed(effect string) {
	if m == nil {
		return
	}
	m.SideEffectFailures.WithLabelValues(effect).Inc()
}

// Handler exposes the registry in Prometheus text format.
func Handler(registry *prometheus.Registry) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
}
