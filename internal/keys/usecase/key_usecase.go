package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"slices"
	"time"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
)

const maxRandomBytes = 128

// keyUseCase implements the KeyUseCase interface.
type keyUseCase struct {
	store    KeyStore
	crypto   CryptoEngine
	envelope Envelope
	clock    func() time.Time
}

// Create generates fresh key material and stores it as a new version of name.
func (k *keyUseCase) Create(
	ctx context.Context,
	name string,
	input CreateKeyInput,
) (*domain.Record[keysDomain.Key], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	jwk, err := k.crypto.GenerateKey(ctx, input.KeyType, input.KeySize, input.KeyOps)
	if err != nil {
		return nil, err
	}

	return k.store.Create(ctx, name, keysDomain.Key{JSONWebKey: jwk}, input.Attributes, input.Tags, refuseManaged)
}

// Import stores caller-supplied RSA material as a new version of name.
func (k *keyUseCase) Import(
	ctx context.Context,
	name string,
	input ImportKeyInput,
) (*domain.Record[keysDomain.Key], error) {
	jwk := input.Key
	if !jwk.Kty.IsRSA() {
		return nil, keysDomain.ErrUnsupportedKeyType
	}
	if input.HSM {
		jwk.Kty = keysDomain.KeyTypeRSAHSM
	}
	if len(jwk.KeyOps) == 0 {
		jwk.KeyOps = slices.Clone(keysDomain.AllKeyOperations)
	}

	if jwk.HasPrivate() {
		priv, err := jwk.RSAPrivateKey()
		if err != nil {
			return nil, err
		}
		jwk = keysDomain.NewJSONWebKeyFromRSA(priv, jwk.Kty, jwk.KeyOps)
	} else if _, err := jwk.RSAPublicKey(); err != nil {
		return nil, err
	}

	return k.store.Create(ctx, name, keysDomain.Key{JSONWebKey: jwk}, input.Attributes, input.Tags, refuseManaged)
}

// Get returns one version of name. An empty version returns the current one.
func (k *keyUseCase) Get(ctx context.Context, name, version string) (*domain.Record[keysDomain.Key], error) {
	return k.store.GetVersion(ctx, name, version)
}

// Update changes attributes and tags of a key version.
func (k *keyUseCase) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[keysDomain.Key], error) {
	return k.store.Update(ctx, name, version, patch)
}

// List pages over the current version of every active key.
func (k *keyUseCase) List(ctx context.Context, cursor string, take int) (*domain.Page[keysDomain.Key], error) {
	return k.store.ListCurrent(ctx, cursor, take)
}

// ListVersions pages over every version of name.
func (k *keyUseCase) ListVersions(
	ctx context.Context,
	name, cursor string,
	take int,
) (*domain.Page[keysDomain.Key], error) {
	return k.store.ListVersions(ctx, name, cursor, take)
}

// Delete soft-deletes every version of name. Keys backing a certificate are deleted
// through the certificate.
func (k *keyUseCase) Delete(ctx context.Context, name string) (*domain.DeletedRecord[keysDomain.Key], error) {
	current, err := k.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if current.Payload.Managed {
		return nil, keysDomain.ErrManagedKey
	}

	return k.store.Delete(ctx, name)
}

// GetDeleted returns a deleted key.
func (k *keyUseCase) GetDeleted(ctx context.Context, name string) (*domain.DeletedRecord[keysDomain.Key], error) {
	return k.store.GetDeleted(ctx, name)
}

// ListDeleted pages over deleted keys.
func (k *keyUseCase) ListDeleted(ctx context.Context, cursor string, take int) (*domain.Page[keysDomain.Key], error) {
	return k.store.ListDeleted(ctx, cursor, take)
}

// Recover restores a deleted key.
func (k *keyUseCase) Recover(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error) {
	return k.store.Recover(ctx, name)
}

// Purge permanently removes a deleted key.
func (k *keyUseCase) Purge(ctx context.Context, name string) error {
	return k.store.Purge(ctx, name)
}

// Backup seals every version of name into an opaque blob. Keys backing a
// certificate are backed up with the certificate.
func (k *keyUseCase) Backup(ctx context.Context, name string) (string, error) {
	versions, err := k.store.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	if slices.ContainsFunc(versions, isManaged) {
		return "", keysDomain.ErrManagedKey
	}

	return k.envelope.Seal(domain.Backup[keysDomain.Key]{
		Kind:     domain.KindKey,
		Name:     name,
		Versions: versions,
	})
}

// Restore opens a backup blob and recreates its key under fresh version ids.
func (k *keyUseCase) Restore(ctx context.Context, blob string) (*domain.Record[keysDomain.Key], error) {
	var backup domain.Backup[keysDomain.Key]
	if err := k.envelope.Open(blob, &backup); err != nil {
		return nil, err
	}
	if _, err := backup.Renew(domain.KindKey); err != nil {
		return nil, err
	}
	if slices.ContainsFunc(backup.Versions, isManaged) {
		return nil, keysDomain.ErrManagedKey
	}

	return k.store.Restore(ctx, backup.Name, backup.Versions)
}

// Rotate generates a new version with the type, size and operations of the current one.
func (k *keyUseCase) Rotate(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error) {
	current, err := k.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if current.Payload.Managed {
		return nil, keysDomain.ErrManagedKey
	}

	jwk := current.Payload.JSONWebKey
	rotated, err := k.crypto.GenerateKey(ctx, jwk.Kty, jwk.Size(), jwk.KeyOps)
	if err != nil {
		return nil, err
	}

	return k.store.Create(ctx, name, keysDomain.Key{JSONWebKey: rotated}, nil, current.Tags, refuseManaged)
}

// Encrypt encrypts plaintext with a key version.
func (k *keyUseCase) Encrypt(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	plaintext []byte,
) (*OperationResult, error) {
	op := keysDomain.OperationEncrypt
	return k.operate(ctx, name, version, op, func(jwk *keysDomain.JSONWebKey) ([]byte, error) {
		return k.crypto.Encrypt(jwk, alg, plaintext)
	})
}

// Decrypt decrypts ciphertext with a key version.
func (k *keyUseCase) Decrypt(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	ciphertext []byte,
) (*OperationResult, error) {
	op := keysDomain.OperationDecrypt
	return k.operate(ctx, name, version, op, func(jwk *keysDomain.JSONWebKey) ([]byte, error) {
		return k.crypto.Decrypt(jwk, alg, ciphertext)
	})
}

// WrapKey wraps a symmetric key with a key version.
func (k *keyUseCase) WrapKey(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	key []byte,
) (*OperationResult, error) {
	op := keysDomain.OperationWrapKey
	return k.operate(ctx, name, version, op, func(jwk *keysDomain.JSONWebKey) ([]byte, error) {
		return k.crypto.WrapKey(jwk, alg, key)
	})
}

// UnwrapKey unwraps a symmetric key with a key version.
func (k *keyUseCase) UnwrapKey(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	wrapped []byte,
) (*OperationResult, error) {
	op := keysDomain.OperationUnwrapKey
	return k.operate(ctx, name, version, op, func(jwk *keysDomain.JSONWebKey) ([]byte, error) {
		return k.crypto.UnwrapKey(jwk, alg, wrapped)
	})
}

// Sign signs a digest with a key version.
func (k *keyUseCase) Sign(
	ctx context.Context,
	name, version string,
	alg keysDomain.SignatureAlgorithm,
	digest []byte,
) (*OperationResult, error) {
	op := keysDomain.OperationSign
	return k.operate(ctx, name, version, op, func(jwk *keysDomain.JSONWebKey) ([]byte, error) {
		return k.crypto.Sign(jwk, alg, digest)
	})
}

// Verify checks a signature with a key version.
func (k *keyUseCase) Verify(
	ctx context.Context,
	name, version string,
	alg keysDomain.SignatureAlgorithm,
	digest, signature []byte,
) (bool, error) {
	record, err := k.usable(ctx, name, version, keysDomain.OperationVerify)
	if err != nil {
		return false, err
	}
	return k.crypto.Verify(&record.Payload.JSONWebKey, alg, digest, signature)
}

// GetRandomBytes returns count bytes from the system CSPRNG.
func (k *keyUseCase) GetRandomBytes(_ context.Context, count int) ([]byte, error) {
	if count < 1 || count > maxRandomBytes {
		return nil, keysDomain.ErrInvalidRandomBytesCount
	}

	out := make([]byte, count)
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return out, nil
}

// usable resolves a key version and checks it may perform op right now.
func (k *keyUseCase) usable(
	ctx context.Context,
	name, version string,
	op keysDomain.KeyOperation,
) (*domain.Record[keysDomain.Key], error) {
	record, err := k.store.GetVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}

	attrs := record.Attributes
	if !attrs.Enabled {
		return nil, keysDomain.ErrKeyDisabled
	}
	now := k.clock().Unix()
	if attrs.NotBefore != nil && now < *attrs.NotBefore {
		return nil, keysDomain.ErrKeyNotActive
	}
	if attrs.Expires != nil && now > *attrs.Expires {
		return nil, keysDomain.ErrKeyNotActive
	}
	if !record.Payload.JSONWebKey.Allows(op) {
		return nil, keysDomain.ErrOperationNotAllowed
	}

	return record, nil
}

// operate runs fn against a usable key version and tags the output with its id.
func (k *keyUseCase) operate(
	ctx context.Context,
	name, version string,
	op keysDomain.KeyOperation,
	fn func(jwk *keysDomain.JSONWebKey) ([]byte, error),
) (*OperationResult, error) {
	record, err := k.usable(ctx, name, version, op)
	if err != nil {
		return nil, err
	}

	out, err := fn(&record.Payload.JSONWebKey)
	if err != nil {
		return nil, err
	}
	return &OperationResult{KeyID: record.ID, Result: out}, nil
}

// NewKeyUseCase creates a key use case over store.
func NewKeyUseCase(store KeyStore, crypto CryptoEngine, envelope Envelope) KeyUseCase {
	return &keyUseCase{
		store:    store,
		crypto:   crypto,
		envelope: envelope,
		clock:    time.Now,
	}
}

func isManaged(record *domain.Record[keysDomain.Key]) bool {
	return record.Payload.Managed
}

// refuseManaged keeps plain writes off names whose key belongs to a certificate.
func refuseManaged(current *domain.Record[keysDomain.Key]) error {
	if current != nil && current.Payload.Managed {
		return keysDomain.ErrManagedKey
	}
	return nil
}
