package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.Default()

	assert.Nil(t, createCORSMiddleware(false, "https://portal.example.com", logger))
	assert.Nil(t, createCORSMiddleware(true, "", logger))
	assert.Nil(t, createCORSMiddleware(true, " , ", logger))
	assert.NotNil(t, createCORSMiddleware(true, "https://portal.example.com,https://admin.example.com", logger))
	assert.NotNil(t, createCORSMiddleware(true, "*", logger))
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{
			name:     "comma separated",
			input:    "https://portal.example.com,https://admin.example.com",
			expected: []string{"https://portal.example.com", "https://admin.example.com"},
		},
		{
			name:     "whitespace and trailing slash",
			input:    " https://portal.example.com/ , https://admin.example.com ",
			expected: []string{"https://portal.example.com", "https://admin.example.com"},
		},
		{name: "only blanks", input: " , ", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseOrigins(tt.input))
		})
	}
}

func newCORSRouter(t *testing.T, enabled bool, origins string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if middleware := createCORSMiddleware(enabled, origins, slog.Default()); middleware != nil {
		router.Use(middleware)
	}
	router.GET("/secrets/:name", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"value": "ok"})
	})
	router.POST("/keys/:name/sign", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"value": "ok"})
	})
	return router
}

func TestCORSIntegration_HeadersAddedWhenEnabled(t *testing.T) {
	router := newCORSRouter(t, true, "https://portal.example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secrets/db", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), "www-authenticate")
}

func TestCORSIntegration_WildcardOrigin(t *testing.T) {
	router := newCORSRouter(t, true, "*")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secrets/db", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSIntegration_NoHeadersWhenDisabled(t *testing.T) {
	router := newCORSRouter(t, false, "https://portal.example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secrets/db", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSIntegration_PreflightRequestHandled(t *testing.T) {
	router := newCORSRouter(t, true, "https://portal.example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/keys/signing/sign", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization,x-ms-client-request-id")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
