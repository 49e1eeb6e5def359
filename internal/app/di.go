// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"

	authHTTP "github.com/allisson/keyvault-emulator/internal/auth/http"
	authService "github.com/allisson/keyvault-emulator/internal/auth/service"
	authUseCase "github.com/allisson/keyvault-emulator/internal/auth/usecase"
	backupService "github.com/allisson/keyvault-emulator/internal/backup/service"
	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	certificatesHTTP "github.com/allisson/keyvault-emulator/internal/certificates/http"
	certificatesUseCase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	"github.com/allisson/keyvault-emulator/internal/config"
	"github.com/allisson/keyvault-emulator/internal/database"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	"github.com/allisson/keyvault-emulator/internal/entity/store"
	"github.com/allisson/keyvault-emulator/internal/http"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	keysHTTP "github.com/allisson/keyvault-emulator/internal/keys/http"
	keysService "github.com/allisson/keyvault-emulator/internal/keys/service"
	keysUseCase "github.com/allisson/keyvault-emulator/internal/keys/usecase"
	"github.com/allisson/keyvault-emulator/internal/metrics"
	"github.com/allisson/keyvault-emulator/internal/pagination"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
	secretsHTTP "github.com/allisson/keyvault-emulator/internal/secrets/http"
	secretsUseCase "github.com/allisson/keyvault-emulator/internal/secrets/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	ids             domain.IDBuilder
	cursorCodec     *pagination.Codec
	envelope        *backupService.EnvelopeService
	cryptoService   *keysService.CryptoService
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Entity stores
	secretStore      *store.Store[secretsDomain.Secret]
	keyStore         *store.Store[keysDomain.Key]
	certificateStore *store.Store[certificatesDomain.Certificate]
	issuerRepository certificatesUseCase.DocumentRepository[certificatesDomain.Issuer]

	// Use Cases
	secretUseCase      secretsUseCase.SecretUseCase
	keyUseCase         keysUseCase.KeyUseCase
	certificateUseCase certificatesUseCase.CertificateUseCase
	issuerUseCase      certificatesUseCase.IssuerUseCase
	contactUseCase     certificatesUseCase.ContactUseCase
	tokenService       authService.TokenService
	tokenUseCase       authUseCase.TokenUseCase

	// Handlers
	secretHandler      *secretsHTTP.SecretHandler
	keyHandler         *keysHTTP.KeyHandler
	certificateHandler *certificatesHTTP.CertificateHandler
	issuerHandler      *certificatesHTTP.IssuerHandler
	contactHandler     *certificatesHTTP.ContactHandler
	tokenHandler       *authHTTP.TokenHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	txManagerInit          sync.Once
	idsInit                sync.Once
	cursorCodecInit        sync.Once
	envelopeInit           sync.Once
	cryptoServiceInit      sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	secretStoreInit        sync.Once
	keyStoreInit           sync.Once
	certificateStoreInit   sync.Once
	issuerRepositoryInit   sync.Once
	secretUseCaseInit      sync.Once
	keyUseCaseInit         sync.Once
	certificateUseCaseInit sync.Once
	issuerUseCaseInit      sync.Once
	contactUseCaseInit     sync.Once
	tokenServiceInit       sync.Once
	tokenUseCaseInit       sync.Once
	secretHandlerInit      sync.Once
	keyHandlerInit         sync.Once
	certificateHandlerInit sync.Once
	issuerHandlerInit      sync.Once
	contactHandlerInit     sync.Once
	tokenHandlerInit       sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var result *multierror.Error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("database close: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initHTTPServer creates the HTTP server with every vault handler registered.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	var db *sql.DB
	if database.IsSQLDriver(c.config.StorageDriver) {
		var err error
		db, err = c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for http server: %w", err)
		}
	}

	secretHandler, err := c.SecretHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret handler for http server: %w", err)
	}

	keyHandler, err := c.KeyHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get key handler for http server: %w", err)
	}

	certificateHandler, err := c.CertificateHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate handler for http server: %w", err)
	}

	issuerHandler, err := c.IssuerHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer handler for http server: %w", err)
	}

	contactHandler, err := c.ContactHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get contact handler for http server: %w", err)
	}

	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	var metricsProvider *metrics.Provider
	if c.config.MetricsEnabled {
		metricsProvider, err = c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	if c.config.TLSEnabled {
		server.WithTLS(c.config.TLSCertFile, c.config.TLSKeyFile)
	}

	server.SetupRouter(c.config, http.Handlers{
		Secret:      secretHandler,
		Key:         keyHandler,
		Certificate: certificateHandler,
		Issuer:      issuerHandler,
		Contact:     contactHandler,
		Token:       tokenHandler,
	}, tokenUseCase, metricsProvider)

	return server, nil
}
