// Package pagination encodes list offsets as opaque, tamper-evident skip tokens.
//
// A skip token is an HS256-signed JWT carrying a single "skip" claim. The signing key
// is derived with HKDF-SHA256 from a process secret, so tokens issued by one process are
// rejected (and decode to offset zero) by any other.
package pagination

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const signingKeyInfo = "skip-token-signing-v1"

type skipClaims struct {
	Skip int `json:"skip"`
	jwt.RegisteredClaims
}

// Codec signs and verifies skip tokens. It is read-only after construction and safe
// for concurrent use.
type Codec struct {
	key []byte
}

// NewCodec derives the token signing key from secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("skip token secret must not be empty")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(signingKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive skip token key: %w", err)
	}

	return &Codec{key: key}, nil
}

// NewRandomCodec creates a codec keyed by a fresh random secret.
func NewRandomCodec() (*Codec, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate skip token secret: %w", err)
	}
	return NewCodec(secret)
}

// Encode returns the skip token for offset skip.
func (c *Codec) Encode(skip int) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, skipClaims{Skip: skip})
	signed, err := token.SignedString(c.key)
	if err != nil {
		// HMAC signing with a non-empty key cannot fail.
		return ""
	}
	return signed
}

// Decode returns the offset carried by token. Missing, malformed, foreign or
// tampered tokens decode to zero.
func (c *Codec) Decode(token string) int {
	if token == "" {
		return 0
	}

	claims := &skipClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Skip < 0 {
		return 0
	}

	return claims.Skip
}
