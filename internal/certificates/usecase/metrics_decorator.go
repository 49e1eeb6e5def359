package usecase

import (
	"context"
	"time"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	"github.com/allisson/keyvault-emulator/internal/metrics"
)

// certificateUseCaseWithMetrics decorates CertificateUseCase with metrics instrumentation.
type certificateUseCaseWithMetrics struct {
	next    CertificateUseCase
	metrics metrics.BusinessMetrics
}

// NewCertificateUseCaseWithMetrics wraps a CertificateUseCase with metrics recording.
func NewCertificateUseCaseWithMetrics(useCase CertificateUseCase, m metrics.BusinessMetrics) CertificateUseCase {
	return &certificateUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *certificateUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, c.metrics, "certificates", operation, start, err)
}

// Create records metrics for certificate issuance.
func (c *certificateUseCaseWithMetrics) Create(
	ctx context.Context,
	name string,
	input CreateCertificateInput,
) (*certificatesDomain.Operation, error) {
	start := time.Now()
	result, err := c.next.Create(ctx, name, input)
	c.record(ctx, "certificate_create", start, err)
	return result, err
}

// Import records metrics for certificate import.
func (c *certificateUseCaseWithMetrics) Import(
	ctx context.Context,
	name string,
	input ImportCertificateInput,
) (*domain.Record[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.Import(ctx, name, input)
	c.record(ctx, "certificate_import", start, err)
	return result, err
}

// Merge records metrics for certificate merges.
func (c *certificateUseCaseWithMetrics) Merge(
	ctx context.Context,
	name string,
	input MergeCertificateInput,
) (*domain.Record[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.Merge(ctx, name, input)
	c.record(ctx, "certificate_merge", start, err)
	return result, err
}

// Get records metrics for certificate reads.
func (c *certificateUseCaseWithMetrics) Get(
	ctx context.Context,
	name, version string,
) (*domain.Record[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.Get(ctx, name, version)
	c.record(ctx, "certificate_get", start, err)
	return result, err
}

// Update records metrics for certificate attribute updates.
func (c *certificateUseCaseWithMetrics) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.Update(ctx, name, version, patch)
	c.record(ctx, "certificate_update", start, err)
	return result, err
}

// List records metrics for certificate listing.
func (c *certificateUseCaseWithMetrics) List(
	ctx context.Context,
	cursor string, take int,
) (*domain.Page[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.List(ctx, cursor, take)
	c.record(ctx, "certificate_list", start, err)
	return result, err
}

// ListVersions records metrics for certificate version listing.
func (c *certificateUseCaseWithMetrics) ListVersions(
	ctx context.Context,
	name, cursor string, take int,
) (*domain.Page[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.ListVersions(ctx, name, cursor, take)
	c.record(ctx, "certificate_list_versions", start, err)
	return result, err
}

// Delete records metrics for certificate deletion.
func (c *certificateUseCaseWithMetrics) Delete(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.Delete(ctx, name)
	c.record(ctx, "certificate_delete", start, err)
	return result, err
}

// GetDeleted records metrics for deleted certificate reads.
func (c *certificateUseCaseWithMetrics) GetDeleted(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.GetDeleted(ctx, name)
	c.record(ctx, "certificate_get_deleted", start, err)
	return result, err
}

// ListDeleted records metrics for deleted certificate listing.
func (c *certificateUseCaseWithMetrics) ListDeleted(
	ctx context.Context,
	cursor string, take int,
) (*domain.Page[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.ListDeleted(ctx, cursor, take)
	c.record(ctx, "certificate_list_deleted", start, err)
	return result, err
}

// Recover records metrics for certificate recovery.
func (c *certificateUseCaseWithMetrics) Recover(
	ctx context.Context,
	name string,
) (*domain.Record[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.Recover(ctx, name)
	c.record(ctx, "certificate_recover", start, err)
	return result, err
}

// Purge records metrics for certificate purges.
func (c *certificateUseCaseWithMetrics) Purge(ctx context.Context, name string) error {
	start := time.Now()
	err := c.next.Purge(ctx, name)
	c.record(ctx, "certificate_purge", start, err)
	return err
}

// Backup records metrics for certificate backups.
func (c *certificateUseCaseWithMetrics) Backup(ctx context.Context, name string) (string, error) {
	start := time.Now()
	result, err := c.next.Backup(ctx, name)
	c.record(ctx, "certificate_backup", start, err)
	return result, err
}

// Restore records metrics for certificate restores.
func (c *certificateUseCaseWithMetrics) Restore(
	ctx context.Context,
	blob string,
) (*domain.Record[certificatesDomain.Certificate], error) {
	start := time.Now()
	result, err := c.next.Restore(ctx, blob)
	c.record(ctx, "certificate_restore", start, err)
	return result, err
}

// GetPolicy records metrics for policy reads.
func (c *certificateUseCaseWithMetrics) GetPolicy(
	ctx context.Context,
	name string,
) (*certificatesDomain.Policy, error) {
	start := time.Now()
	result, err := c.next.GetPolicy(ctx, name)
	c.record(ctx, "certificate_policy_get", start, err)
	return result, err
}

// UpdatePolicy records metrics for policy updates.
func (c *certificateUseCaseWithMetrics) UpdatePolicy(
	ctx context.Context,
	name string,
	patch certificatesDomain.PolicyPatch,
) (*certificatesDomain.Policy, error) {
	start := time.Now()
	result, err := c.next.UpdatePolicy(ctx, name, patch)
	c.record(ctx, "certificate_policy_update", start, err)
	return result, err
}

// BindIssuer records metrics for issuer binding.
func (c *certificateUseCaseWithMetrics) BindIssuer(
	ctx context.Context,
	name, issuerName string,
) (*certificatesDomain.Policy, error) {
	start := time.Now()
	result, err := c.next.BindIssuer(ctx, name, issuerName)
	c.record(ctx, "certificate_issuer_bind", start, err)
	return result, err
}

// GetOperation records metrics for operation reads.
func (c *certificateUseCaseWithMetrics) GetOperation(
	ctx context.Context,
	name string,
) (*certificatesDomain.Operation, error) {
	start := time.Now()
	result, err := c.next.GetOperation(ctx, name)
	c.record(ctx, "certificate_operation_get", start, err)
	return result, err
}

// DeleteOperation records metrics for operation deletion.
func (c *certificateUseCaseWithMetrics) DeleteOperation(
	ctx context.Context,
	name string,
) (*certificatesDomain.Operation, error) {
	start := time.Now()
	result, err := c.next.DeleteOperation(ctx, name)
	c.record(ctx, "certificate_operation_delete", start, err)
	return result, err
}
