// Package domain defines core domain models and errors for secrets.
package domain

import (
	"github.com/allisson/keyvault-emulator/internal/errors"
)

// Secret-specific error definitions.
var (
	// ErrManagedSecret indicates the secret backs a certificate and can only change through it.
	ErrManagedSecret = errors.Wrap(errors.ErrInvalidOperation, "secret is managed by a certificate")
)
