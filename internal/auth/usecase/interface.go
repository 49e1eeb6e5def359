// Package usecase defines business logic interfaces for authentication operations.
package usecase

import (
	"context"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
)

// TokenUseCase issues bearer tokens and authenticates requests carrying them.
type TokenUseCase interface {
	// Issue signs a new token for the requested subject. An empty subject falls back to
	// DefaultSubject.
	Issue(ctx context.Context, issueTokenInput *authDomain.IssueTokenInput) (*authDomain.Token, error)

	// Authenticate verifies a plain bearer token and returns the caller identity.
	Authenticate(ctx context.Context, plainToken string) (*authDomain.Identity, error)
}
