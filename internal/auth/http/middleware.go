package http

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
	authUseCase "github.com/allisson/keyvault-emulator/internal/auth/usecase"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
	"github.com/allisson/keyvault-emulator/internal/httputil"
)

// Challenge builds the WWW-Authenticate value pointing clients at the token endpoint.
func Challenge(authorizationURI string) string {
	return fmt.Sprintf(`Bearer authorization="%s", resource="%s"`, authorizationURI, authorizationURI)
}

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware extracts the token (case-insensitive "bearer" prefix), verifies it with
// tokenUseCase.Authenticate and stores the caller identity in the request context for
// GetIdentity. Every failure answers 401 with a WWW-Authenticate challenge so vault SDKs
// know where to fetch a token.
//
// Usage:
//
//	router.Use(AuthenticationMiddleware(tokenUseCase, challenge, logger))
func AuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	challenge string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		unauthorized := func(err error) {
			c.Header("WWW-Authenticate", challenge)
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
		}

		// Extract Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			unauthorized(apperrors.ErrUnauthorized)
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			unauthorized(apperrors.ErrUnauthorized)
			return
		}

		plainToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			unauthorized(authDomain.ErrInvalidToken)
			return
		}

		identity, err := tokenUseCase.Authenticate(c.Request.Context(), plainToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			if apperrors.Is(err, apperrors.ErrUnauthorized) {
				unauthorized(err)
				return
			}
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		// Store authenticated caller in context
		ctx := WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful", slog.String("subject", identity.Subject))

		c.Next()
	}
}
