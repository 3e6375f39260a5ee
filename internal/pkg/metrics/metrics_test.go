package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/interns/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/interns/12", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/interns/:id", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "internhub_http_requests_total")
}

func TestCounters(t *testing.T) {
	m := New()
	m.AccessDecision("redirect")
	m.NotificationResult(false)
	m.SchedulerRun("token_cleanup", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDecisions.WithLabelValues("redirect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulerRuns.WithLabelValues("token_cleanup", "error")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.AccessDecision("allow")
		nilMetrics.NotificationResult(true)
		nilMetrics.SchedulerRun("x", nil)
	})
}
