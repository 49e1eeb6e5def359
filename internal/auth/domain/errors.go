package domain

import (
	"github.com/allisson/keyvault-emulator/internal/errors"
)

// Authentication errors.
var (
	// ErrInvalidToken indicates a bearer token that is malformed, tampered with or signed by another key.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrTokenExpired indicates a bearer token whose expiry has passed.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrInvalidSubject indicates a token request with an unusable subject.
	ErrInvalidSubject = errors.Wrap(errors.ErrInvalidInput, "invalid subject")
)
