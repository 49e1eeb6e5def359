// Package usecase implements key management and key operations on top of the
// versioned entity store and the RSA engine.
package usecase

import (
	"context"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
)

// KeyStore is the versioned store holding key versions.
type KeyStore interface {
	Create(
		ctx context.Context,
		name string,
		payload keysDomain.Key,
		attrs *domain.AttributesPatch,
		tags domain.Tags,
		guards ...domain.Guard[keysDomain.Key],
	) (*domain.Record[keysDomain.Key], error)
	Get(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error)
	GetVersion(ctx context.Context, name, version string) (*domain.Record[keysDomain.Key], error)
	Update(ctx context.Context, name, version string, patch domain.Patch) (*domain.Record[keysDomain.Key], error)
	ListCurrent(ctx context.Context, cursor string, take int) (*domain.Page[keysDomain.Key], error)
	ListDeleted(ctx context.Context, cursor string, take int) (*domain.Page[keysDomain.Key], error)
	ListVersions(ctx context.Context, name, cursor string, take int) (*domain.Page[keysDomain.Key], error)
	Delete(ctx context.Context, name string) (*domain.DeletedRecord[keysDomain.Key], error)
	GetDeleted(ctx context.Context, name string) (*domain.DeletedRecord[keysDomain.Key], error)
	Recover(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error)
	Purge(ctx context.Context, name string) error
	Versions(ctx context.Context, name string) ([]*domain.Record[keysDomain.Key], error)
	Restore(
		ctx context.Context,
		name string,
		records []*domain.Record[keysDomain.Key],
	) (*domain.Record[keysDomain.Key], error)
}

// CryptoEngine performs the RSA primitives behind key operations.
type CryptoEngine interface {
	GenerateKey(
		ctx context.Context,
		kty keysDomain.KeyType,
		size int,
		ops []keysDomain.KeyOperation,
	) (keysDomain.JSONWebKey, error)
	Encrypt(jwk *keysDomain.JSONWebKey, alg keysDomain.EncryptionAlgorithm, plaintext []byte) ([]byte, error)
	Decrypt(jwk *keysDomain.JSONWebKey, alg keysDomain.EncryptionAlgorithm, ciphertext []byte) ([]byte, error)
	WrapKey(jwk *keysDomain.JSONWebKey, alg keysDomain.EncryptionAlgorithm, key []byte) ([]byte, error)
	UnwrapKey(jwk *keysDomain.JSONWebKey, alg keysDomain.EncryptionAlgorithm, wrapped []byte) ([]byte, error)
	Sign(jwk *keysDomain.JSONWebKey, alg keysDomain.SignatureAlgorithm, digest []byte) ([]byte, error)
	Verify(jwk *keysDomain.JSONWebKey, alg keysDomain.SignatureAlgorithm, digest, signature []byte) (bool, error)
}

// Envelope seals and opens backup blobs.
type Envelope interface {
	Seal(v any) (string, error)
	Open(token string, v any) error
}

// CreateKeyInput describes a generated key.
type CreateKeyInput struct {
	KeyType    keysDomain.KeyType
	KeySize    int
	KeyOps     []keysDomain.KeyOperation
	Attributes *domain.AttributesPatch
	Tags       domain.Tags
}

// ImportKeyInput describes caller-supplied key material.
type ImportKeyInput struct {
	Key        keysDomain.JSONWebKey
	HSM        bool
	Attributes *domain.AttributesPatch
	Tags       domain.Tags
}

// OperationResult is the output of encrypt, decrypt, sign, wrap and unwrap.
type OperationResult struct {
	// KeyID identifies the exact key version that performed the operation.
	KeyID  string
	Result []byte
}

// KeyUseCase defines key management and key operation business logic.
type KeyUseCase interface {
	Create(ctx context.Context, name string, input CreateKeyInput) (*domain.Record[keysDomain.Key], error)
	Import(ctx context.Context, name string, input ImportKeyInput) (*domain.Record[keysDomain.Key], error)
	Get(ctx context.Context, name, version string) (*domain.Record[keysDomain.Key], error)
	Update(ctx context.Context, name, version string, patch domain.Patch) (*domain.Record[keysDomain.Key], error)
	List(ctx context.Context, cursor string, take int) (*domain.Page[keysDomain.Key], error)
	ListVersions(ctx context.Context, name, cursor string, take int) (*domain.Page[keysDomain.Key], error)
	Delete(ctx context.Context, name string) (*domain.DeletedRecord[keysDomain.Key], error)
	GetDeleted(ctx context.Context, name string) (*domain.DeletedRecord[keysDomain.Key], error)
	ListDeleted(ctx context.Context, cursor string, take int) (*domain.Page[keysDomain.Key], error)
	Recover(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error)
	Purge(ctx context.Context, name string) error
	Backup(ctx context.Context, name string) (string, error)
	Restore(ctx context.Context, blob string) (*domain.Record[keysDomain.Key], error)
	Rotate(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error)

	Encrypt(
		ctx context.Context,
		name, version string,
		alg keysDomain.EncryptionAlgorithm,
		plaintext []byte,
	) (*OperationResult, error)
	Decrypt(
		ctx context.Context,
		name, version string,
		alg keysDomain.EncryptionAlgorithm,
		ciphertext []byte,
	) (*OperationResult, error)
	WrapKey(
		ctx context.Context,
		name, version string,
		alg keysDomain.EncryptionAlgorithm,
		key []byte,
	) (*OperationResult, error)
	UnwrapKey(
		ctx context.Context,
		name, version string,
		alg keysDomain.EncryptionAlgorithm,
		wrapped []byte,
	) (*OperationResult, error)
	Sign(
		ctx context.Context,
		name, version string,
		alg keysDomain.SignatureAlgorithm,
		digest []byte,
	) (*OperationResult, error)
	Verify(
		ctx context.Context,
		name, version string,
		alg keysDomain.SignatureAlgorithm,
		digest, signature []byte,
	) (bool, error)

	GetRandomBytes(ctx context.Context, count int) ([]byte, error)
}
