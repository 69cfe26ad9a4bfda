package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"todoapi/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/test", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	t.Run("generates id when not provided", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("uses provided id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "test-request-id")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "test-request-id", seen)
		assert.Equal(t, "test-request-id", w.Header().Get(RequestIDHeader))
	})
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("info", "json", &buf)

	r := gin.New()
	r.Use(RequestID(), Logging(log))
	r.GET("/teapot", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request completed", line["message"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/teapot", line["path"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", MetricsHandler())

	before := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/2", nil))
	after := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "200"))
	assert.Equal(t, before+2, after)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/items/:id",status="200"}`)
}
