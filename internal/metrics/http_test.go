package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("kw_http")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "kw_http"))
	router.POST("/v1/keywrap/encrypt", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})
	router.POST("/v1/keywrap/decrypt", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/keywrap/encrypt", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/keywrap/decrypt", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	output := scrape(t, provider)

	assertMetricLine(t, output, `kw_http_http_requests_total`,
		`method="POST".*path="/v1/keywrap/encrypt".*status_code="201"`, `3`)
	assertMetricLine(t, output, `kw_http_http_requests_total`,
		`method="POST".*path="/v1/keywrap/decrypt".*status_code="422"`, `1`)
	assertMetricLine(t, output, `kw_http_http_requests_total`,
		`method="GET".*path="unknown".*status_code="404"`, `1`)
	assertMetricLine(t, output, `kw_http_http_request_duration_seconds_count`,
		`path="/v1/keywrap/encrypt"`, `3`)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/v1/keywrap/rewrap", routeLabel("/v1/keywrap/rewrap"))
	assert.Equal(t, "unknown", routeLabel(""))
}
