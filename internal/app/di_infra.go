package app

import (
	"database/sql"
	"fmt"

	backupService "github.com/allisson/keyvault-emulator/internal/backup/service"
	certificatesUseCase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	"github.com/allisson/keyvault-emulator/internal/config"
	"github.com/allisson/keyvault-emulator/internal/database"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	"github.com/allisson/keyvault-emulator/internal/entity/repository"
	"github.com/allisson/keyvault-emulator/internal/entity/store"
	"github.com/allisson/keyvault-emulator/internal/http"
	keysService "github.com/allisson/keyvault-emulator/internal/keys/service"
	"github.com/allisson/keyvault-emulator/internal/metrics"
	"github.com/allisson/keyvault-emulator/internal/pagination"
)

// backupKeyName names the process-wide RSA key in envelope headers.
const backupKeyName = "vault-backup-key"

// DB returns the database connection.
// It fails when the configured storage driver is not a SQL backend.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager. The memory driver gets a no-op manager.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// IDBuilder returns the builder for entity identifiers rooted at the vault base URI.
func (c *Container) IDBuilder() domain.IDBuilder {
	c.idsInit.Do(func() {
		c.ids = domain.NewIDBuilder(c.config.BaseURI())
	})
	return c.ids
}

// CursorCodec returns the codec that signs list continuation tokens.
func (c *Container) CursorCodec() (*pagination.Codec, error) {
	var err error
	c.cursorCodecInit.Do(func() {
		c.cursorCodec, err = pagination.NewRandomCodec()
		if err != nil {
			c.initErrors["cursorCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cursorCodec"]; exists {
		return nil, storedErr
	}
	return c.cursorCodec, nil
}

// Envelope returns the backup envelope service keyed by a per-process RSA key.
func (c *Container) Envelope() (*backupService.EnvelopeService, error) {
	var err error
	c.envelopeInit.Do(func() {
		c.envelope, err = c.initEnvelope()
		if err != nil {
			c.initErrors["envelope"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelope"]; exists {
		return nil, storedErr
	}
	return c.envelope, nil
}

// CryptoService returns the RSA engine shared by keys and certificate issuance.
func (c *Container) CryptoService() *keysService.CryptoService {
	c.cryptoServiceInit.Do(func() {
		c.cryptoService = keysService.NewCryptoService()
	})
	return c.cryptoService
}

// MetricsProvider returns the OpenTelemetry provider backing the Prometheus endpoint.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the recorder used by the use case decorators.
// A no-op recorder is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// MetricsServer returns the server exposing /metrics on its own port.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	if !database.IsSQLDriver(c.config.StorageDriver) {
		return nil, fmt.Errorf("storage driver %q does not use a database", c.config.StorageDriver)
	}

	db, err := database.Connect(database.Config{
		Driver:             c.config.StorageDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager for the configured storage driver.
func (c *Container) initTxManager() (database.TxManager, error) {
	if c.config.StorageDriver == config.StorageDriverMemory {
		return database.NewNoopTxManager(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initEnvelope generates the vault key and wraps it in an envelope service.
func (c *Container) initEnvelope() (*backupService.EnvelopeService, error) {
	vaultKey, err := backupService.GenerateVaultKey()
	if err != nil {
		return nil, err
	}

	keyID := c.IDBuilder().ID(domain.KindKey, backupKeyName, "")
	return backupService.NewEnvelopeService(vaultKey, keyID)
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initMetricsServer creates the metrics server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}

// newEntityStore builds the versioned store for kind on top of the configured repository.
func newEntityStore[T any](c *Container, kind domain.Kind) (*store.Store[T], error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for %s store: %w", kind, err)
	}

	codec, err := c.CursorCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get cursor codec for %s store: %w", kind, err)
	}

	var repo store.Repository[T]
	switch c.config.StorageDriver {
	case config.StorageDriverMemory:
		repo = repository.NewMemoryRepository[T]()
	case config.StorageDriverPostgres:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for %s store: %w", kind, err)
		}
		repo = repository.NewPostgreSQLRepository[T](db, kind)
	case config.StorageDriverMySQL:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for %s store: %w", kind, err)
		}
		repo = repository.NewMySQLRepository[T](db, kind)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.config.StorageDriver)
	}

	return store.New[T](
		kind,
		repo,
		txManager,
		codec,
		store.WithRecoverableDays(c.config.RecoverableDays),
		store.WithIDBuilder(c.IDBuilder()),
	), nil
}

// newDocumentRepository builds the singleton-document repository for kind.
func newDocumentRepository[T any](
	c *Container,
	kind string,
) (certificatesUseCase.DocumentRepository[T], error) {
	switch c.config.StorageDriver {
	case config.StorageDriverMemory:
		return repository.NewMemoryDocumentRepository[T](), nil
	case config.StorageDriverPostgres:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for %s documents: %w", kind, err)
		}
		return repository.NewPostgreSQLDocumentRepository[T](db, kind), nil
	case config.StorageDriverMySQL:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for %s documents: %w", kind, err)
		}
		return repository.NewMySQLDocumentRepository[T](db, kind), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.config.StorageDriver)
	}
}
