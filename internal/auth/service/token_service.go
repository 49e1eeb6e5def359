package service

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

// TokenIssuer is the "iss" claim of every token signed by the emulator.
const TokenIssuer = "keyvault-emulator"

// tokenService implements TokenService using HS256 JWTs.
type tokenService struct {
	key []byte
}

// Sign creates an HS256 JWT for identity.
func (t *tokenService) Sign(identity authDomain.Identity) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    TokenIssuer,
		Subject:   identity.Subject,
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
	}
	if identity.Resource != "" {
		claims.Audience = jwt.ClaimStrings{identity.Resource}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Verify parses plainToken and validates its signature, issuer and expiry.
func (t *tokenService) Verify(plainToken string) (*authDomain.Identity, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(plainToken, claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authDomain.ErrTokenExpired
		}
		return nil, authDomain.ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, authDomain.ErrInvalidToken
	}

	identity := &authDomain.Identity{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if len(claims.Audience) > 0 {
		identity.Resource = claims.Audience[0]
	}
	return identity, nil
}

// NewTokenService creates a TokenService signing with key.
func NewTokenService(key []byte) (TokenService, error) {
	if len(key) == 0 {
		return nil, apperrors.New("token signing key must not be empty")
	}
	return &tokenService{key: key}, nil
}

// GenerateSigningKey returns a random 32-byte HS256 key.
func GenerateSigningKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate token signing key")
	}
	return key, nil
}
