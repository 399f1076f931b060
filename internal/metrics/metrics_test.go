package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware("metrics-test"))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())
	return r
}

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	r := newEngine()
	counter := httpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/items/:id", "204")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/items/1", "/items/2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMiddleware_UnmatchedRoutesShareOneLabel(t *testing.T) {
	r := newEngine()
	counter := httpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, unmatchedRoute, "404")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	r := newEngine()
	OrderPlaced()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/1", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "storefront_orders_placed_total"))
	assert.True(t, strings.Contains(body, "http_request_duration_seconds"))
}
