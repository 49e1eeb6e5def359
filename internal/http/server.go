// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/keyvault-emulator/internal/auth/http"
	authUseCase "github.com/allisson/keyvault-emulator/internal/auth/usecase"
	certificatesHTTP "github.com/allisson/keyvault-emulator/internal/certificates/http"
	"github.com/allisson/keyvault-emulator/internal/config"
	"github.com/allisson/keyvault-emulator/internal/httputil"
	keysHTTP "github.com/allisson/keyvault-emulator/internal/keys/http"
	"github.com/allisson/keyvault-emulator/internal/metrics"
	secretsHTTP "github.com/allisson/keyvault-emulator/internal/secrets/http"
)

// Handlers groups the vault handlers registered by SetupRouter.
type Handlers struct {
	Secret      *secretsHTTP.SecretHandler
	Key         *keysHTTP.KeyHandler
	Certificate *certificatesHTTP.CertificateHandler
	Issuer      *certificatesHTTP.IssuerHandler
	Contact     *certificatesHTTP.ContactHandler
	Token       *authHTTP.TokenHandler
}

// Server represents the HTTP server
type Server struct {
	db          *sql.DB
	server      *http.Server
	router      *gin.Engine
	logger      *slog.Logger
	tlsCertFile string
	tlsKeyFile  string
}

// NewServer creates a new HTTP server. db may be nil when entities live in memory.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// WithTLS makes Start serve HTTPS with the given PEM files.
func (s *Server) WithTLS(certFile, keyFile string) *Server {
	s.tlsCertFile = certFile
	s.tlsKeyFile = keyFile
	return s
}

// SetupRouter registers middleware and every vault route.
// tokenUseCase is only consulted when authentication is enabled.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	tokenUseCase authUseCase.TokenUseCase,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httputil.NewErrorResponse("NotFound", "route not found"))
	})

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Token endpoint is never authenticated
	if handlers.Token != nil {
		tokenChain := []gin.HandlerFunc{}
		if cfg.RateLimitTokenEnabled {
			tokenChain = append(tokenChain, authHTTP.TokenRateLimitMiddleware(
				cfg.RateLimitTokenRequestsPerSec,
				cfg.RateLimitTokenBurst,
				s.logger,
			))
		}
		tokenChain = append(tokenChain, handlers.Token.IssueTokenHandler)
		router.GET("/token", tokenChain...)
	}

	vault := router.Group("/")
	if cfg.AuthEnabled {
		vault.Use(authHTTP.AuthenticationMiddleware(
			tokenUseCase,
			authHTTP.Challenge(cfg.BaseURI()+"/token"),
			s.logger,
		))
		if cfg.RateLimitEnabled {
			vault.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
		}
	}

	if handlers.Secret != nil {
		registerSecretRoutes(vault, handlers.Secret)
	}
	if handlers.Key != nil {
		registerKeyRoutes(vault, handlers.Key)
	}
	if handlers.Certificate != nil {
		registerCertificateRoutes(vault, handlers.Certificate, handlers.Issuer, handlers.Contact)
	}

	s.router = router
}

func registerSecretRoutes(vault *gin.RouterGroup, h *secretsHTTP.SecretHandler) {
	secrets := vault.Group("/secrets")
	{
		secrets.GET("", h.ListHandler)
		secrets.POST("/restore", h.RestoreHandler)
		secrets.PUT("/:name", h.SetHandler)
		secrets.GET("/:name", h.GetHandler)
		secrets.PATCH("/:name", h.UpdateHandler)
		secrets.DELETE("/:name", h.DeleteHandler)
		secrets.GET("/:name/versions", h.ListVersionsHandler)
		secrets.POST("/:name/backup", h.BackupHandler)
		secrets.GET("/:name/:version", h.GetHandler)
		secrets.PATCH("/:name/:version", h.UpdateHandler)
	}

	deleted := vault.Group("/deletedsecrets")
	{
		deleted.GET("", h.ListDeletedHandler)
		deleted.GET("/:name", h.GetDeletedHandler)
		deleted.DELETE("/:name", h.PurgeHandler)
		deleted.POST("/:name/recover", h.RecoverHandler)
	}
}

func registerKeyRoutes(vault *gin.RouterGroup, h *keysHTTP.KeyHandler) {
	vault.POST("/rng", h.RandomBytesHandler)

	keys := vault.Group("/keys")
	{
		keys.GET("", h.ListHandler)
		keys.POST("/restore", h.RestoreHandler)
		keys.PUT("/:name", h.ImportHandler)
		keys.GET("/:name", h.GetHandler)
		keys.PATCH("/:name", h.UpdateHandler)
		keys.DELETE("/:name", h.DeleteHandler)
		keys.POST("/:name/create", h.CreateHandler)
		keys.POST("/:name/rotate", h.RotateHandler)
		keys.POST("/:name/backup", h.BackupHandler)
		keys.GET("/:name/versions", h.ListVersionsHandler)
		keys.GET("/:name/:version", h.GetHandler)
		keys.PATCH("/:name/:version", h.UpdateHandler)

		// Operations on the current version ("/keys/:name//encrypt" once normalized)
		keys.POST("/:name/encrypt", h.EncryptHandler)
		keys.POST("/:name/decrypt", h.DecryptHandler)
		keys.POST("/:name/wrapkey", h.WrapKeyHandler)
		keys.POST("/:name/unwrapkey", h.UnwrapKeyHandler)
		keys.POST("/:name/sign", h.SignHandler)
		keys.POST("/:name/verify", h.VerifyHandler)

		keys.POST("/:name/:version/encrypt", h.EncryptHandler)
		keys.POST("/:name/:version/decrypt", h.DecryptHandler)
		keys.POST("/:name/:version/wrapkey", h.WrapKeyHandler)
		keys.POST("/:name/:version/unwrapkey", h.UnwrapKeyHandler)
		keys.POST("/:name/:version/sign", h.SignHandler)
		keys.POST("/:name/:version/verify", h.VerifyHandler)
	}

	deleted := vault.Group("/deletedkeys")
	{
		deleted.GET("", h.ListDeletedHandler)
		deleted.GET("/:name", h.GetDeletedHandler)
		deleted.DELETE("/:name", h.PurgeHandler)
		deleted.POST("/:name/recover", h.RecoverHandler)
	}
}

func registerCertificateRoutes(
	vault *gin.RouterGroup,
	h *certificatesHTTP.CertificateHandler,
	issuers *certificatesHTTP.IssuerHandler,
	contacts *certificatesHTTP.ContactHandler,
) {
	certificates := vault.Group("/certificates")
	{
		certificates.GET("", h.ListHandler)
		certificates.POST("/restore", h.RestoreHandler)

		if issuers != nil {
			certificates.GET("/issuers", issuers.ListHandler)
			certificates.PUT("/issuers/:issuer", issuers.SetHandler)
			certificates.GET("/issuers/:issuer", issuers.GetHandler)
			certificates.PATCH("/issuers/:issuer", issuers.UpdateHandler)
			certificates.DELETE("/issuers/:issuer", issuers.DeleteHandler)
		}

		if contacts != nil {
			certificates.PUT("/contacts", contacts.SetHandler)
			certificates.GET("/contacts", contacts.GetHandler)
			certificates.DELETE("/contacts", contacts.DeleteHandler)
		}

		certificates.GET("/:name", h.GetHandler)
		certificates.PATCH("/:name", h.UpdateHandler)
		certificates.DELETE("/:name", h.DeleteHandler)
		certificates.POST("/:name/create", h.CreateHandler)
		certificates.POST("/:name/import", h.ImportHandler)
		certificates.POST("/:name/backup", h.BackupHandler)
		certificates.GET("/:name/versions", h.ListVersionsHandler)
		certificates.GET("/:name/policy", h.GetPolicyHandler)
		certificates.PATCH("/:name/policy", h.UpdatePolicyHandler)
		certificates.PUT("/:name/policy/issuer", h.BindIssuerHandler)
		certificates.GET("/:name/pending", h.GetOperationHandler)
		certificates.DELETE("/:name/pending", h.DeleteOperationHandler)
		certificates.POST("/:name/pending/merge", h.MergeHandler)
		certificates.GET("/:name/:version", h.GetHandler)
		certificates.PATCH("/:name/:version", h.UpdateHandler)
	}

	deleted := vault.Group("/deletedcertificates")
	{
		deleted.GET("", h.ListDeletedHandler)
		deleted.GET("/:name", h.GetDeletedHandler)
		deleted.DELETE("/:name", h.PurgeHandler)
		deleted.POST("/:name/recover", h.RecoverHandler)
	}
}

// Handler returns the router wrapped with path normalization.
func (s *Server) Handler() http.Handler {
	return NormalizePathMiddleware(s.router)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured")
	}

	s.server.Handler = s.Handler()

	var err error
	if s.tlsCertFile != "" {
		s.logger.Info("starting https server", slog.String("addr", s.server.Addr))
		err = s.server.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile)
	} else {
		s.logger.Info("starting http server", slog.String("addr", s.server.Addr))
		err = s.server.ListenAndServe()
	}

	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports that the process is alive.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the storage backend is reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"components": gin.H{"storage": "memory"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"storage": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"storage": "ok"},
	})
}
