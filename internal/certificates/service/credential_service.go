package service

import (
	"github.com/allisson/go-pwdhash"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

// CredentialService protects issuer credentials at rest. Issuer passwords are never
// returned by the API, so only an Argon2id hash is kept.
type CredentialService struct {
	hasher *pwdhash.PasswordHasher
}

// Protect returns a copy of creds whose password is replaced by its hash.
// A nil value or an empty password is returned unchanged.
func (s *CredentialService) Protect(
	creds *certificatesDomain.IssuerCredentials,
) (*certificatesDomain.IssuerCredentials, error) {
	if creds == nil || creds.Password == "" {
		return creds, nil
	}

	hashed, err := s.hasher.Hash([]byte(creds.Password))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash issuer password")
	}
	return &certificatesDomain.IssuerCredentials{AccountID: creds.AccountID, Password: hashed}, nil
}

// Matches reports whether password is the one stored in creds.
func (s *CredentialService) Matches(creds *certificatesDomain.IssuerCredentials, password string) bool {
	if creds == nil || creds.Password == "" {
		return false
	}
	ok, err := s.hasher.Verify([]byte(password), creds.Password)
	if err != nil {
		return false
	}
	return ok
}

// NewCredentialService creates a CredentialService using the interactive Argon2id policy.
func NewCredentialService() *CredentialService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyInteractive),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &CredentialService{hasher: hasher}
}
