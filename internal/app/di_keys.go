package app

import (
	"fmt"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	"github.com/allisson/keyvault-emulator/internal/entity/store"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	keysHTTP "github.com/allisson/keyvault-emulator/internal/keys/http"
	keysUseCase "github.com/allisson/keyvault-emulator/internal/keys/usecase"
)

// KeyStore returns the versioned store for keys.
func (c *Container) KeyStore() (*store.Store[keysDomain.Key], error) {
	var err error
	c.keyStoreInit.Do(func() {
		c.keyStore, err = newEntityStore[keysDomain.Key](c, domain.KindKey)
		if err != nil {
			c.initErrors["keyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyStore"]; exists {
		return nil, storedErr
	}
	return c.keyStore, nil
}

// KeyUseCase returns the key use case.
func (c *Container) KeyUseCase() (keysUseCase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// KeyHandler returns the HTTP handler for key management and key operations.
func (c *Container) KeyHandler() (*keysHTTP.KeyHandler, error) {
	var err error
	c.keyHandlerInit.Do(func() {
		c.keyHandler, err = c.initKeyHandler()
		if err != nil {
			c.initErrors["keyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyHandler"]; exists {
		return nil, storedErr
	}
	return c.keyHandler, nil
}

// initKeyUseCase creates the key use case with all its dependencies.
func (c *Container) initKeyUseCase() (keysUseCase.KeyUseCase, error) {
	keyStore, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for key use case: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope for key use case: %w", err)
	}

	baseUseCase := keysUseCase.NewKeyUseCase(keyStore, c.CryptoService(), envelope)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
		}
		return keysUseCase.NewKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initKeyHandler creates the key HTTP handler with all its dependencies.
func (c *Container) initKeyHandler() (*keysHTTP.KeyHandler, error) {
	keyUseCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for key handler: %w", err)
	}

	return keysHTTP.NewKeyHandler(keyUseCase, c.IDBuilder(), c.Logger()), nil
}
