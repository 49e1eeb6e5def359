package app

import (
	"fmt"

	authHTTP "github.com/allisson/keyvault-emulator/internal/auth/http"
	authService "github.com/allisson/keyvault-emulator/internal/auth/service"
	authUseCase "github.com/allisson/keyvault-emulator/internal/auth/usecase"
)

// TokenService returns the service that signs and verifies bearer tokens.
func (c *Container) TokenService() (authService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = c.initTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// TokenHandler returns the HTTP handler for the token endpoint.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.initErrors["tokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// initTokenService creates the token service. Without AUTH_SIGNING_KEY a random key
// is generated, so tokens are only valid for the lifetime of the process.
func (c *Container) initTokenService() (authService.TokenService, error) {
	signingKey := []byte(c.config.AuthSigningKey)
	if len(signingKey) == 0 {
		generated, err := authService.GenerateSigningKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token signing key: %w", err)
		}
		c.Logger().Warn("AUTH_SIGNING_KEY is not set, tokens will not survive a restart")
		signingKey = generated
	}

	return authService.NewTokenService(signingKey)
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for token use case: %w", err)
	}

	baseUseCase := authUseCase.NewTokenUseCase(tokenService, c.config.AuthTokenExpiration)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return authUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTokenHandler creates the token HTTP handler with all its dependencies.
func (c *Container) initTokenHandler() (*authHTTP.TokenHandler, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}

	return authHTTP.NewTokenHandler(tokenUseCase, c.Logger()), nil
}
