// Package service implements the RSA engine behind key operations: key generation,
// encrypt/decrypt, sign/verify and wrap/unwrap.
//
// The engine is stateless apart from a weighted semaphore that bounds concurrent RSA
// key generation to GOMAXPROCS. Key generation is the only CPU-heavy call and the
// only one that takes a context.
package service

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" // #nosec G505 -- RSA-OAEP is defined with SHA-1
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"runtime"
	"slices"

	"golang.org/x/sync/semaphore"

	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
)

// CryptoService performs RSA operations over JSON web keys.
type CryptoService struct {
	generation *semaphore.Weighted
}

// NewCryptoService creates a crypto engine.
func NewCryptoService() *CryptoService {
	return &CryptoService{
		generation: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// GenerateRSAPrivateKey generates an RSA key of size bits. A size of 0 selects the
// default of 2048.
func (c *CryptoService) GenerateRSAPrivateKey(ctx context.Context, size int) (*rsa.PrivateKey, error) {
	if size == 0 {
		size = keysDomain.DefaultRSAKeySize
	}
	if !slices.Contains(keysDomain.SupportedRSAKeySizes, size) {
		return nil, keysDomain.ErrUnsupportedKeySize
	}

	if err := c.generation.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.generation.Release(1)

	priv, err := rsa.GenerateKey(rand.Reader, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rsa key: %w", err)
	}
	return priv, nil
}

// GenerateKey generates fresh key material of type kty.
func (c *CryptoService) GenerateKey(
	ctx context.Context,
	kty keysDomain.KeyType,
	size int,
	ops []keysDomain.KeyOperation,
) (keysDomain.JSONWebKey, error) {
	if !kty.IsRSA() {
		return keysDomain.JSONWebKey{}, keysDomain.ErrUnsupportedKeyType
	}

	priv, err := c.GenerateRSAPrivateKey(ctx, size)
	if err != nil {
		return keysDomain.JSONWebKey{}, err
	}

	return keysDomain.NewJSONWebKeyFromRSA(priv, kty, ops), nil
}

// Encrypt encrypts plaintext with the public half of jwk.
func (c *CryptoService) Encrypt(
	jwk *keysDomain.JSONWebKey,
	alg keysDomain.EncryptionAlgorithm,
	plaintext []byte,
) ([]byte, error) {
	pub, err := jwk.RSAPublicKey()
	if err != nil {
		return nil, err
	}

	var ciphertext []byte
	switch alg {
	case keysDomain.RSA15:
		ciphertext, err = rsa.EncryptPKCS1v15(rand.Reader, pub, plaintext)
	case keysDomain.RSAOAEP:
		ciphertext, err = rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, plaintext, nil)
	case keysDomain.RSAOAEP256:
		ciphertext, err = rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, nil)
	default:
		return nil, keysDomain.ErrUnsupportedAlgorithm
	}
	switch {
	case errors.Is(err, rsa.ErrMessageTooLong):
		return nil, keysDomain.ErrPlaintextTooLong
	case err != nil:
		return nil, fmt.Errorf("%w: %v", keysDomain.ErrInvalidKeyMaterial, err)
	}
	return ciphertext, nil
}

// Decrypt decrypts ciphertext with the private half of jwk.
func (c *CryptoService) Decrypt(
	jwk *keysDomain.JSONWebKey,
	alg keysDomain.EncryptionAlgorithm,
	ciphertext []byte,
) ([]byte, error) {
	var h hash.Hash
	switch alg {
	case keysDomain.RSA15:
	case keysDomain.RSAOAEP:
		h = sha1.New()
	case keysDomain.RSAOAEP256:
		h = sha256.New()
	default:
		return nil, keysDomain.ErrUnsupportedAlgorithm
	}

	priv, err := jwk.RSAPrivateKey()
	if err != nil {
		return nil, err
	}

	var plaintext []byte
	if h == nil {
		plaintext, err = rsa.DecryptPKCS1v15(nil, priv, ciphertext)
	} else {
		plaintext, err = rsa.DecryptOAEP(h, nil, priv, ciphertext, nil)
	}
	if err != nil {
		return nil, keysDomain.ErrDecryptFailed
	}
	return plaintext, nil
}

// WrapKey encrypts a symmetric key. It uses the same schemes as Encrypt.
func (c *CryptoService) WrapKey(
	jwk *keysDomain.JSONWebKey,
	alg keysDomain.EncryptionAlgorithm,
	key []byte,
) ([]byte, error) {
	return c.Encrypt(jwk, alg, key)
}

// UnwrapKey decrypts a key produced by WrapKey.
func (c *CryptoService) UnwrapKey(
	jwk *keysDomain.JSONWebKey,
	alg keysDomain.EncryptionAlgorithm,
	wrapped []byte,
) ([]byte, error) {
	return c.Decrypt(jwk, alg, wrapped)
}

// Sign signs a precomputed digest with RSASSA-PKCS1-v1_5.
func (c *CryptoService) Sign(
	jwk *keysDomain.JSONWebKey,
	alg keysDomain.SignatureAlgorithm,
	digest []byte,
) ([]byte, error) {
	h, err := signatureHash(alg, digest)
	if err != nil {
		return nil, err
	}

	priv, err := jwk.RSAPrivateKey()
	if err != nil {
		return nil, err
	}

	return rsa.SignPKCS1v15(nil, priv, h, digest)
}

// Verify checks signature over digest. A signature that does not verify returns
// false without an error.
func (c *CryptoService) Verify(
	jwk *keysDomain.JSONWebKey,
	alg keysDomain.SignatureAlgorithm,
	digest, signature []byte,
) (bool, error) {
	h, err := signatureHash(alg, digest)
	if err != nil {
		return false, err
	}

	pub, err := jwk.RSAPublicKey()
	if err != nil {
		return false, err
	}

	return rsa.VerifyPKCS1v15(pub, h, digest, signature) == nil, nil
}

// signatureHash resolves alg and checks the digest length against it.
func signatureHash(alg keysDomain.SignatureAlgorithm, digest []byte) (crypto.Hash, error) {
	var h crypto.Hash
	switch alg {
	case keysDomain.RS256:
		h = crypto.SHA256
	case keysDomain.RS384:
		h = crypto.SHA384
	case keysDomain.RS512:
		h = crypto.SHA512
	default:
		return 0, keysDomain.ErrUnsupportedAlgorithm
	}

	if len(digest) != h.Size() {
		return 0, keysDomain.ErrInvalidDigestLength
	}
	return h, nil
}
