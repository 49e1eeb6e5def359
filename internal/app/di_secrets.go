package app

import (
	"fmt"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	"github.com/allisson/keyvault-emulator/internal/entity/store"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
	secretsHTTP "github.com/allisson/keyvault-emulator/internal/secrets/http"
	secretsUseCase "github.com/allisson/keyvault-emulator/internal/secrets/usecase"
)

// SecretStore returns the versioned store for secrets.
func (c *Container) SecretStore() (*store.Store[secretsDomain.Secret], error) {
	var err error
	c.secretStoreInit.Do(func() {
		c.secretStore, err = newEntityStore[secretsDomain.Secret](c, domain.KindSecret)
		if err != nil {
			c.initErrors["secretStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretStore"]; exists {
		return nil, storedErr
	}
	return c.secretStore, nil
}

// SecretUseCase returns the secret use case.
func (c *Container) SecretUseCase() (secretsUseCase.SecretUseCase, error) {
	var err error
	c.secretUseCaseInit.Do(func() {
		c.secretUseCase, err = c.initSecretUseCase()
		if err != nil {
			c.initErrors["secretUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretUseCase"]; exists {
		return nil, storedErr
	}
	return c.secretUseCase, nil
}

// SecretHandler returns the HTTP handler for secret management operations.
func (c *Container) SecretHandler() (*secretsHTTP.SecretHandler, error) {
	var err error
	c.secretHandlerInit.Do(func() {
		c.secretHandler, err = c.initSecretHandler()
		if err != nil {
			c.initErrors["secretHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretHandler"]; exists {
		return nil, storedErr
	}
	return c.secretHandler, nil
}

// initSecretUseCase creates the secret use case with all its dependencies.
func (c *Container) initSecretUseCase() (secretsUseCase.SecretUseCase, error) {
	secretStore, err := c.SecretStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret store for secret use case: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope for secret use case: %w", err)
	}

	baseUseCase := secretsUseCase.NewSecretUseCase(secretStore, envelope)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for secret use case: %w", err)
		}
		return secretsUseCase.NewSecretUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSecretHandler creates the secret HTTP handler with all its dependencies.
func (c *Container) initSecretHandler() (*secretsHTTP.SecretHandler, error) {
	secretUseCase, err := c.SecretUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret use case for secret handler: %w", err)
	}

	return secretsHTTP.NewSecretHandler(secretUseCase, c.IDBuilder(), c.Logger()), nil
}
