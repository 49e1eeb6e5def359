// Package http provides HTTP middleware and handlers for bearer-token authentication.
package http

import (
	"context"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
)

// identityKey is a context key type for storing the authenticated caller.
type identityKey struct{}

// WithIdentity stores the authenticated caller in the context.
// This is typically called by the authentication middleware after successful token validation.
func WithIdentity(ctx context.Context, identity *authDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the authenticated caller from the context.
// Returns (identity, true) if present, or (nil, false) if no identity was set.
func GetIdentity(ctx context.Context) (*authDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*authDomain.Identity)
	return identity, ok
}
