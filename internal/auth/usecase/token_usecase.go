// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"strings"
	"time"
	"unicode"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
	authService "github.com/allisson/keyvault-emulator/internal/auth/service"
)

const maxSubjectLength = 256

// tokenUseCase implements TokenUseCase on top of a stateless TokenService.
type tokenUseCase struct {
	tokenService authService.TokenService
	expiration   time.Duration
	clock        func() time.Time
}

// Issue signs a token that expires after the configured expiration.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	issueTokenInput *authDomain.IssueTokenInput,
) (*authDomain.Token, error) {
	subject := issueTokenInput.Subject
	if subject == "" {
		subject = authDomain.DefaultSubject
	}
	if len(subject) > maxSubjectLength || strings.IndexFunc(subject, unicode.IsSpace) >= 0 {
		return nil, authDomain.ErrInvalidSubject
	}

	expiresOn := t.clock().UTC().Add(t.expiration).Truncate(time.Second)
	plainToken, err := t.tokenService.Sign(authDomain.Identity{
		Subject:   subject,
		Resource:  issueTokenInput.Resource,
		ExpiresAt: expiresOn,
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.Token{
		AccessToken: plainToken,
		TokenType:   authDomain.TokenType,
		Resource:    issueTokenInput.Resource,
		ExpiresIn:   int64(t.expiration / time.Second),
		ExpiresOn:   expiresOn,
	}, nil
}

// Authenticate verifies plainToken. Signature and expiry are the only checks: tokens are
// not persisted, so they cannot be revoked before they expire.
func (t *tokenUseCase) Authenticate(ctx context.Context, plainToken string) (*authDomain.Identity, error) {
	if plainToken == "" {
		return nil, authDomain.ErrInvalidToken
	}
	return t.tokenService.Verify(plainToken)
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(tokenService authService.TokenService, expiration time.Duration) TokenUseCase {
	return &tokenUseCase{
		tokenService: tokenService,
		expiration:   expiration,
		clock:        time.Now,
	}
}
