package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Recorders(t *testing.T) {
	m := NewMetrics()

	m.ObserveAudit("success", 2*time.Second)
	m.ObserveAudit("PageTimeout", 25*time.Second)
	m.ObserveNavigation("networkidle", "timeout")
	m.RecordDecision(false, "private_ip")
	m.RecordDecision(true, "allowed")
	m.RecordDecision(true, "allowed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditsTotal.WithLabelValues("PageTimeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NavigationsTotal.WithLabelValues("networkidle", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatekeeperDecided.WithLabelValues("block", "private_ip")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatekeeperDecided.WithLabelValues("allow", "allowed")))
}

func TestMetrics_AuditStarted(t *testing.T) {
	m := NewMetrics()

	done := m.AuditStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditsInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AuditsInFlight))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/status", func(c *gin.Context) { c.String(http.StatusOK, "OK!") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/status", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `pagecheck_http_requests_total{method="GET",path="/status",status="200"} 3`), body)
	assert.Contains(t, body, "go_goroutines")
}
