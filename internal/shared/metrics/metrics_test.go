package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAnalysis(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveAnalysis("javascript", "Moderate", 40, []string{"nested_loops"}, 2*time.Millisecond)
	m.ObserveAnalysis("javascript", "Moderate", 45, []string{"nested_loops", "sorting"}, time.Millisecond)

	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("javascript", "Moderate")); got != 2 {
		t.Fatalf("analyses_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DetectionsTotal.WithLabelValues("nested_loops")); got != 2 {
		t.Fatalf("detections nested_loops = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DetectionsTotal.WithLabelValues("sorting")); got != 1 {
		t.Fatalf("detections sorting = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis("go", "Moderate", 1, nil, 0)
	m.CacheLookup("hit")
	m.QuotaRejected()
	m.RateLimited("DEFAULT")
	m.SideEffectFailed("archive")
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m := New(registry)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/v1/analyses/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/metrics", Handler(registry))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/abc", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/v1/analyses/:id", http.MethodGet, "404")); got != 1 {
		t.Fatalf("requests_total = %v, want 1", got)
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "greencode_http_requests_total") {
		t.Fatalf("expected request counter in exposition")
	}
}
