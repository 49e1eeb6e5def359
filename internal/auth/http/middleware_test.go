package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
	httpMocks "github.com/allisson/keyvault-emulator/internal/auth/http/mocks"
	"github.com/allisson/keyvault-emulator/internal/httputil"
)

const testChallenge = `Bearer authorization="https://vault.test/token", resource="https://vault.test/token"`

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// createTestLogger creates a test logger that discards output.
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthenticatedRouter(t *testing.T, uc *httpMocks.MockTokenUseCase) *gin.Engine {
	t.Helper()

	router := gin.New()
	router.Use(AuthenticationMiddleware(uc, testChallenge, createTestLogger()))
	router.GET("/test", func(c *gin.Context) {
		identity, ok := GetIdentity(c.Request.Context())
		require.True(t, ok, "identity should be in context")
		c.JSON(http.StatusOK, gin.H{"subject": identity.Subject})
	})
	return router
}

func TestChallenge(t *testing.T) {
	assert.Equal(t, testChallenge, Challenge("https://vault.test/token"))
}

func TestAuthenticationMiddleware_Success(t *testing.T) {
	testCases := []struct {
		name   string
		prefix string
	}{
		{"standard_Bearer", "Bearer "},
		{"lowercase_bearer", "bearer "},
		{"uppercase_BEARER", "BEARER "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &httpMocks.MockTokenUseCase{}
			uc.On("Authenticate", mock.Anything, "jwt-token").
				Return(&authDomain.Identity{Subject: "client-a"}, nil).
				Once()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tc.prefix+"jwt-token")
			newAuthenticatedRouter(t, uc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"subject":"client-a"}`, w.Body.String())
			uc.AssertExpectations(t)
		})
	}
}

func TestAuthenticationMiddleware_Unauthorized(t *testing.T) {
	testCases := []struct {
		name   string
		header string
	}{
		{"missing_header", ""},
		{"basic_scheme", "Basic dXNlcjpwYXNz"},
		{"short_header", "Bear"},
		{"empty_token", "Bearer    "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &httpMocks.MockTokenUseCase{}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			newAuthenticatedRouter(t, uc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, testChallenge, w.Header().Get("WWW-Authenticate"))

			var body httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Unauthorized", body.Error.Code)
			uc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthenticationMiddleware_Error_ExpiredToken(t *testing.T) {
	uc := &httpMocks.MockTokenUseCase{}
	uc.On("Authenticate", mock.Anything, "old").Return(nil, authDomain.ErrTokenExpired).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer old")
	newAuthenticatedRouter(t, uc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, testChallenge, w.Header().Get("WWW-Authenticate"))
	assert.Contains(t, w.Body.String(), "token expired")
	uc.AssertExpectations(t)
}

func TestAuthenticationMiddleware_Error_Internal(t *testing.T) {
	uc := &httpMocks.MockTokenUseCase{}
	uc.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("boom")).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer tok")
	newAuthenticatedRouter(t, uc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))
}

func TestGetIdentity_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	identity, ok := GetIdentity(req.Context())
	assert.False(t, ok)
	assert.Nil(t, identity)
}
