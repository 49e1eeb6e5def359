package usecase

import (
	"context"
	"time"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	"github.com/allisson/keyvault-emulator/internal/metrics"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
)

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record reports the outcome and duration of one operation.
func (s *secretUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, s.metrics, "secrets", operation, start, err)
}

// Set records metrics for secret writes.
func (s *secretUseCaseWithMetrics) Set(
	ctx context.Context,
	name string,
	input SetSecretInput,
) (*domain.Record[secretsDomain.Secret], error) {
	start := time.Now()
	rec, err := s.next.Set(ctx, name, input)
	s.record(ctx, "secret_set", start, err)
	return rec, err
}

// Get records metrics for secret reads.
func (s *secretUseCaseWithMetrics) Get(
	ctx context.Context,
	name, version string,
) (*domain.Record[secretsDomain.Secret], error) {
	start := time.Now()
	rec, err := s.next.Get(ctx, name, version)
	s.record(ctx, "secret_get", start, err)
	return rec, err
}

// Update records metrics for secret attribute updates.
func (s *secretUseCaseWithMetrics) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[secretsDomain.Secret], error) {
	start := time.Now()
	rec, err := s.next.Update(ctx, name, version, patch)
	s.record(ctx, "secret_update", start, err)
	return rec, err
}

// List records metrics for secret listing.
func (s *secretUseCaseWithMetrics) List(
	ctx context.Context,
	cursor string,
	take int,
) (*domain.Page[secretsDomain.Secret], error) {
	start := time.Now()
	page, err := s.next.List(ctx, cursor, take)
	s.record(ctx, "secret_list", start, err)
	return page, err
}

// ListVersions records metrics for version listing.
func (s *secretUseCaseWithMetrics) ListVersions(
	ctx context.Context,
	name, cursor string,
	take int,
) (*domain.Page[secretsDomain.Secret], error) {
	start := time.Now()
	page, err := s.next.ListVersions(ctx, name, cursor, take)
	s.record(ctx, "secret_list_versions", start, err)
	return page, err
}

// Delete records metrics for secret deletion.
func (s *secretUseCaseWithMetrics) Delete(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[secretsDomain.Secret], error) {
	start := time.Now()
	deleted, err := s.next.Delete(ctx, name)
	s.record(ctx, "secret_delete", start, err)
	return deleted, err
}

// GetDeleted records metrics for deleted secret reads.
func (s *secretUseCaseWithMetrics) GetDeleted(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[secretsDomain.Secret], error) {
	start := time.Now()
	deleted, err := s.next.GetDeleted(ctx, name)
	s.record(ctx, "secret_get_deleted", start, err)
	return deleted, err
}

// ListDeleted records metrics for deleted secret listing.
func (s *secretUseCaseWithMetrics) ListDeleted(
	ctx context.Context,
	cursor string,
	take int,
) (*domain.Page[secretsDomain.Secret], error) {
	start := time.Now()
	page, err := s.next.ListDeleted(ctx, cursor, take)
	s.record(ctx, "secret_list_deleted", start, err)
	return page, err
}

// Recover records metrics for secret recovery.
func (s *secretUseCaseWithMetrics) Recover(
	ctx context.Context,
	name string,
) (*domain.Record[secretsDomain.Secret], error) {
	start := time.Now()
	rec, err := s.next.Recover(ctx, name)
	s.record(ctx, "secret_recover", start, err)
	return rec, err
}

// Backup records metrics for secret backup.
func (s *secretUseCaseWithMetrics) Backup(
	ctx context.Context,
	name string,
) (string, error) {
	start := time.Now()
	blob, err := s.next.Backup(ctx, name)
	s.record(ctx, "secret_backup", start, err)
	return blob, err
}

// Restore records metrics for secret restore.
func (s *secretUseCaseWithMetrics) Restore(
	ctx context.Context,
	blob string,
) (*domain.Record[secretsDomain.Secret], error) {
	start := time.Now()
	rec, err := s.next.Restore(ctx, blob)
	s.record(ctx, "secret_restore", start, err)
	return rec, err
}

// Purge records metrics for secret purge.
func (s *secretUseCaseWithMetrics) Purge(ctx context.Context, name string) error {
	start := time.Now()
	err := s.next.Purge(ctx, name)
	s.record(ctx, "secret_purge", start, err)
	return err
}
