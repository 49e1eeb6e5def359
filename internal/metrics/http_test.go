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

	provider, err := NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "test_app"))
	router.GET("/secrets/:name", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("name")})
	})
	router.POST("/keys/:name/create", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error"})
	})

	requests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/secrets/first?api-version=7.4", http.StatusOK},
		{http.MethodGet, "/secrets/second?api-version=7.4", http.StatusOK},
		{http.MethodPost, "/keys/signing/create", http.StatusInternalServerError},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, r := range requests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(r.method, r.target, nil))
		require.Equal(t, r.status, w.Code)
	}

	output := scrape(t, provider)

	// Different names share the route pattern
	assertBizMetricLine(t, output,
		`test_app_http_requests_total`,
		`api_version="7.4".*method="GET".*path="/secrets/:name".*status_code="200"`,
		`2`,
	)
	assertBizMetricLine(t, output,
		`test_app_http_requests_total`,
		`api_version="none".*method="POST".*path="/keys/:name/create".*status_code="500"`,
		`1`,
	)
	assertBizMetricLine(t, output,
		`test_app_http_requests_total`,
		`api_version="none".*method="GET".*path="unknown".*status_code="404"`,
		`1`,
	)
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "RoutePattern", input: "/keys/:name/:version/sign", expected: "/keys/:name/:version/sign"},
		{name: "EmptyPath", input: "", expected: "unknown"},
		{name: "RootPath", input: "/", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}

func TestAPIVersionLabel(t *testing.T) {
	assert.Equal(t, "none", apiVersionLabel(""))
	assert.Equal(t, "7.4", apiVersionLabel("7.4"))
	assert.Equal(t, "2016-10-01", apiVersionLabel("2016-10-01"))
	assert.Equal(t, "invalid", apiVersionLabel("a-much-too-long-api-version-string"))
}
