package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsAllowHeaders are the request headers vault SDKs send from a browser.
var corsAllowHeaders = []string{
	"Authorization",
	"Content-Type",
	"x-ms-client-request-id",
	"x-ms-return-client-request-id",
}

// corsExposeHeaders lets browser clients read the auth challenge and request ids.
var corsExposeHeaders = []string{
	"WWW-Authenticate",
	"X-Request-Id",
	"x-ms-request-id",
}

// createCORSMiddleware creates a CORS middleware from configuration, or nil when
// CORS is disabled or no origin is configured.
//
// CORS is disabled by default since the vault API is consumed by SDKs, not browsers.
// A single "*" origin allows any origin but then never allows credentials.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	if allowOriginsStr == "" {
		logger.Warn("CORS enabled but no origins configured - CORS will not be applied")
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins found")
		return nil
	}

	logger.Info("CORS enabled",
		slog.Int("origin_count", len(origins)),
		slog.Any("origins", origins))

	config := cors.Config{
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
		},
		AllowHeaders:  corsAllowHeaders,
		ExposeHeaders: corsExposeHeaders,
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}

	return cors.New(config)
}

// parseOrigins splits a comma-separated origin list, dropping blanks and trailing slashes.
func parseOrigins(originsStr string) []string {
	if originsStr == "" {
		return nil
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSuffix(strings.TrimSpace(part), "/")
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
