// Package service provides technical services for authentication operations.
package service

import (
	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
)

// TokenService signs and verifies bearer tokens.
type TokenService interface {
	// Sign returns a signed token carrying the identity's subject, resource and expiry.
	Sign(identity authDomain.Identity) (string, error)

	// Verify checks the token signature and expiry and returns the identity it carries.
	// Returns ErrTokenExpired for expired tokens and ErrInvalidToken for anything else.
	Verify(plainToken string) (*authDomain.Identity, error)
}
