package usecase

import (
	"context"
	"time"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	"github.com/allisson/keyvault-emulator/internal/metrics"
)

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// observe records the outcome of one operation.
func (k *keyUseCaseWithMetrics) observe(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, k.metrics, "keys", operation, start, err)
}

// Create records metrics for key generation.
func (k *keyUseCaseWithMetrics) Create(
	ctx context.Context,
	name string,
	input CreateKeyInput,
) (*domain.Record[keysDomain.Key], error) {
	start := time.Now()
	record, err := k.next.Create(ctx, name, input)
	k.observe(ctx, "key_create", start, err)
	return record, err
}

// Import records metrics for key import.
func (k *keyUseCaseWithMetrics) Import(
	ctx context.Context,
	name string,
	input ImportKeyInput,
) (*domain.Record[keysDomain.Key], error) {
	start := time.Now()
	record, err := k.next.Import(ctx, name, input)
	k.observe(ctx, "key_import", start, err)
	return record, err
}

// Get records metrics for key retrieval.
func (k *keyUseCaseWithMetrics) Get(ctx context.Context, name, version string) (*domain.Record[keysDomain.Key], error) {
	start := time.Now()
	record, err := k.next.Get(ctx, name, version)
	k.observe(ctx, "key_get", start, err)
	return record, err
}

// Update records metrics for key updates.
func (k *keyUseCaseWithMetrics) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[keysDomain.Key], error) {
	start := time.Now()
	record, err := k.next.Update(ctx, name, version, patch)
	k.observe(ctx, "key_update", start, err)
	return record, err
}

// List records metrics for key listing.
func (k *keyUseCaseWithMetrics) List(ctx context.Context, cursor string, take int) (*domain.Page[keysDomain.Key], error) {
	start := time.Now()
	page, err := k.next.List(ctx, cursor, take)
	k.observe(ctx, "key_list", start, err)
	return page, err
}

// ListVersions records metrics for key version listing.
func (k *keyUseCaseWithMetrics) ListVersions(
	ctx context.Context,
	name, cursor string,
	take int,
) (*domain.Page[keysDomain.Key], error) {
	start := time.Now()
	page, err := k.next.ListVersions(ctx, name, cursor, take)
	k.observe(ctx, "key_list_versions", start, err)
	return page, err
}

// Delete records metrics for key deletion.
func (k *keyUseCaseWithMetrics) Delete(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[keysDomain.Key], error) {
	start := time.Now()
	deleted, err := k.next.Delete(ctx, name)
	k.observe(ctx, "key_delete", start, err)
	return deleted, err
}

// GetDeleted records metrics for deleted key retrieval.
func (k *keyUseCaseWithMetrics) GetDeleted(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[keysDomain.Key], error) {
	start := time.Now()
	deleted, err := k.next.GetDeleted(ctx, name)
	k.observe(ctx, "key_get_deleted", start, err)
	return deleted, err
}

// ListDeleted records metrics for deleted key listing.
func (k *keyUseCaseWithMetrics) ListDeleted(
	ctx context.Context,
	cursor string,
	take int,
) (*domain.Page[keysDomain.Key], error) {
	start := time.Now()
	page, err := k.next.ListDeleted(ctx, cursor, take)
	k.observe(ctx, "key_list_deleted", start, err)
	return page, err
}

// Recover records metrics for key recovery.
func (k *keyUseCaseWithMetrics) Recover(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error) {
	start := time.Now()
	record, err := k.next.Recover(ctx, name)
	k.observe(ctx, "key_recover", start, err)
	return record, err
}

// Purge records metrics for key purge.
func (k *keyUseCaseWithMetrics) Purge(ctx context.Context, name string) error {
	start := time.Now()
	err := k.next.Purge(ctx, name)
	k.observe(ctx, "key_purge", start, err)
	return err
}

// Backup records metrics for key backup.
func (k *keyUseCaseWithMetrics) Backup(ctx context.Context, name string) (string, error) {
	start := time.Now()
	blob, err := k.next.Backup(ctx, name)
	k.observe(ctx, "key_backup", start, err)
	return blob, err
}

// Restore records metrics for key restore.
func (k *keyUseCaseWithMetrics) Restore(ctx context.Context, blob string) (*domain.Record[keysDomain.Key], error) {
	start := time.Now()
	record, err := k.next.Restore(ctx, blob)
	k.observe(ctx, "key_restore", start, err)
	return record, err
}

// Rotate records metrics for key rotation.
func (k *keyUseCaseWithMetrics) Rotate(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error) {
	start := time.Now()
	record, err := k.next.Rotate(ctx, name)
	k.observe(ctx, "key_rotate", start, err)
	return record, err
}

// Encrypt records metrics for encryption.
func (k *keyUseCaseWithMetrics) Encrypt(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	plaintext []byte,
) (*OperationResult, error) {
	start := time.Now()
	result, err := k.next.Encrypt(ctx, name, version, alg, plaintext)
	k.observe(ctx, "key_encrypt", start, err)
	return result, err
}

// Decrypt records metrics for decryption.
func (k *keyUseCaseWithMetrics) Decrypt(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	ciphertext []byte,
) (*OperationResult, error) {
	start := time.Now()
	result, err := k.next.Decrypt(ctx, name, version, alg, ciphertext)
	k.observe(ctx, "key_decrypt", start, err)
	return result, err
}

// WrapKey records metrics for key wrapping.
func (k *keyUseCaseWithMetrics) WrapKey(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	key []byte,
) (*OperationResult, error) {
	start := time.Now()
	result, err := k.next.WrapKey(ctx, name, version, alg, key)
	k.observe(ctx, "key_wrap", start, err)
	return result, err
}

// UnwrapKey records metrics for key unwrapping.
func (k *keyUseCaseWithMetrics) UnwrapKey(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	wrapped []byte,
) (*OperationResult, error) {
	start := time.Now()
	result, err := k.next.UnwrapKey(ctx, name, version, alg, wrapped)
	k.observe(ctx, "key_unwrap", start, err)
	return result, err
}

// Sign records metrics for signing.
func (k *keyUseCaseWithMetrics) Sign(
	ctx context.Context,
	name, version string,
	alg keysDomain.SignatureAlgorithm,
	digest []byte,
) (*OperationResult, error) {
	start := time.Now()
	result, err := k.next.Sign(ctx, name, version, alg, digest)
	k.observe(ctx, "key_sign", start, err)
	return result, err
}

// Verify records metrics for signature verification.
func (k *keyUseCaseWithMetrics) Verify(
	ctx context.Context,
	name, version string,
	alg keysDomain.SignatureAlgorithm,
	digest, signature []byte,
) (bool, error) {
	start := time.Now()
	ok, err := k.next.Verify(ctx, name, version, alg, digest, signature)
	k.observe(ctx, "key_verify", start, err)
	return ok, err
}

// GetRandomBytes records metrics for random byte generation.
func (k *keyUseCaseWithMetrics) GetRandomBytes(ctx context.Context, count int) ([]byte, error) {
	start := time.Now()
	out, err := k.next.GetRandomBytes(ctx, count)
	k.observe(ctx, "key_random_bytes", start, err)
	return out, err
}
