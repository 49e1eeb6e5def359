// Package mocks provides mock implementations of the certificate use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	certificatesUsecase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
)

func ptr[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// MockCertificateUseCase is a mock implementation of CertificateUseCase for testing.
type MockCertificateUseCase struct {
	mock.Mock
}

var _ certificatesUsecase.CertificateUseCase = (*MockCertificateUseCase)(nil)

// Create mocks the Create method of CertificateUseCase.
func (m *MockCertificateUseCase) Create(
	ctx context.Context,
	name string,
	input certificatesUsecase.CreateCertificateInput,
) (*certificatesDomain.Operation, error) {
	return ptr[certificatesDomain.Operation](m.Called(ctx, name, input))
}

// Import mocks the Import method of CertificateUseCase.
func (m *MockCertificateUseCase) Import(
	ctx context.Context,
	name string,
	input certificatesUsecase.ImportCertificateInput,
) (*domain.Record[certificatesDomain.Certificate], error) {
	return ptr[domain.Record[certificatesDomain.Certificate]](m.Called(ctx, name, input))
}

// Merge mocks the Merge method of CertificateUseCase.
func (m *MockCertificateUseCase) Merge(
	ctx context.Context,
	name string,
	input certificatesUsecase.MergeCertificateInput,
) (*domain.Record[certificatesDomain.Certificate], error) {
	return ptr[domain.Record[certificatesDomain.Certificate]](m.Called(ctx, name, input))
}

// Get mocks the Get method of CertificateUseCase.
func (m *MockCertificateUseCase) Get(
	ctx context.Context,
	name, version string,
) (*domain.Record[certificatesDomain.Certificate], error) {
	return ptr[domain.Record[certificatesDomain.Certificate]](m.Called(ctx, name, version))
}

// Update mocks the Update method of CertificateUseCase.
func (m *MockCertificateUseCase) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[certificatesDomain.Certificate], error) {
	return ptr[domain.Record[certificatesDomain.Certificate]](m.Called(ctx, name, version, patch))
}

// List mocks the List method of CertificateUseCase.
func (m *MockCertificateUseCase) List(
	ctx context.Context,
	cursor string, take int,
) (*domain.Page[certificatesDomain.Certificate], error) {
	return ptr[domain.Page[certificatesDomain.Certificate]](m.Called(ctx, cursor, take))
}

// ListVersions mocks the ListVersions method of CertificateUseCase.
func (m *MockCertificateUseCase) ListVersions(
	ctx context.Context,
	name, cursor string, take int,
) (*domain.Page[certificatesDomain.Certificate], error) {
	return ptr[domain.Page[certificatesDomain.Certificate]](m.Called(ctx, name, cursor, take))
}

// Delete mocks the Delete method of CertificateUseCase.
func (m *MockCertificateUseCase) Delete(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[certificatesDomain.Certificate], error) {
	return ptr[domain.DeletedRecord[certificatesDomain.Certificate]](m.Called(ctx, name))
}

// GetDeleted mocks the GetDeleted method of CertificateUseCase.
func (m *MockCertificateUseCase) GetDeleted(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[certificatesDomain.Certificate], error) {
	return ptr[domain.DeletedRecord[certificatesDomain.Certificate]](m.Called(ctx, name))
}

// ListDeleted mocks the ListDeleted method of CertificateUseCase.
func (m *MockCertificateUseCase) ListDeleted(
	ctx context.Context,
	cursor string, take int,
) (*domain.Page[certificatesDomain.Certificate], error) {
	return ptr[domain.Page[certificatesDomain.Certificate]](m.Called(ctx, cursor, take))
}

// Recover mocks the Recover method of CertificateUseCase.
func (m *MockCertificateUseCase) Recover(
	ctx context.Context,
	name string,
) (*domain.Record[certificatesDomain.Certificate], error) {
	return ptr[domain.Record[certificatesDomain.Certificate]](m.Called(ctx, name))
}

// Purge mocks the Purge method of CertificateUseCase.
func (m *MockCertificateUseCase) Purge(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// Backup mocks the Backup method of CertificateUseCase.
func (m *MockCertificateUseCase) Backup(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// Restore mocks the Restore method of CertificateUseCase.
func (m *MockCertificateUseCase) Restore(
	ctx context.Context,
	blob string,
) (*domain.Record[certificatesDomain.Certificate], error) {
	return ptr[domain.Record[certificatesDomain.Certificate]](m.Called(ctx, blob))
}

// GetPolicy mocks the GetPolicy method of CertificateUseCase.
func (m *MockCertificateUseCase) GetPolicy(
	ctx context.Context,
	name string,
) (*certificatesDomain.Policy, error) {
	return ptr[certificatesDomain.Policy](m.Called(ctx, name))
}

// UpdatePolicy mocks the UpdatePolicy method of CertificateUseCase.
func (m *MockCertificateUseCase) UpdatePolicy(
	ctx context.Context,
	name string,
	patch certificatesDomain.PolicyPatch,
) (*certificatesDomain.Policy, error) {
	return ptr[certificatesDomain.Policy](m.Called(ctx, name, patch))
}

// BindIssuer mocks the BindIssuer method of CertificateUseCase.
func (m *MockCertificateUseCase) BindIssuer(
	ctx context.Context,
	name, issuerName string,
) (*certificatesDomain.Policy, error) {
	return ptr[certificatesDomain.Policy](m.Called(ctx, name, issuerName))
}

// GetOperation mocks the GetOperation method of CertificateUseCase.
func (m *MockCertificateUseCase) GetOperation(
	ctx context.Context,
	name string,
) (*certificatesDomain.Operation, error) {
	return ptr[certificatesDomain.Operation](m.Called(ctx, name))
}

// DeleteOperation mocks the DeleteOperation method of CertificateUseCase.
func (m *MockCertificateUseCase) DeleteOperation(
	ctx context.Context,
	name string,
) (*certificatesDomain.Operation, error) {
	return ptr[certificatesDomain.Operation](m.Called(ctx, name))
}

// MockIssuerUseCase is a mock implementation of IssuerUseCase for testing.
type MockIssuerUseCase struct {
	mock.Mock
}

var _ certificatesUsecase.IssuerUseCase = (*MockIssuerUseCase)(nil)

// Set mocks the Set method of IssuerUseCase.
func (m *MockIssuerUseCase) Set(
	ctx context.Context,
	name string,
	input certificatesUsecase.IssuerInput,
) (*certificatesDomain.Issuer, error) {
	return ptr[certificatesDomain.Issuer](m.Called(ctx, name, input))
}

// Get mocks the Get method of IssuerUseCase.
func (m *MockIssuerUseCase) Get(ctx context.Context, name string) (*certificatesDomain.Issuer, error) {
	return ptr[certificatesDomain.Issuer](m.Called(ctx, name))
}

// Update mocks the Update method of IssuerUseCase.
func (m *MockIssuerUseCase) Update(
	ctx context.Context,
	name string,
	patch certificatesDomain.IssuerPatch,
) (*certificatesDomain.Issuer, error) {
	return ptr[certificatesDomain.Issuer](m.Called(ctx, name, patch))
}

// Delete mocks the Delete method of IssuerUseCase.
func (m *MockIssuerUseCase) Delete(ctx context.Context, name string) (*certificatesDomain.Issuer, error) {
	return ptr[certificatesDomain.Issuer](m.Called(ctx, name))
}

// List mocks the List method of IssuerUseCase.
func (m *MockIssuerUseCase) List(ctx context.Context) ([]*certificatesDomain.Issuer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*certificatesDomain.Issuer), args.Error(1)
}

// MockContactUseCase is a mock implementation of ContactUseCase for testing.
type MockContactUseCase struct {
	mock.Mock
}

var _ certificatesUsecase.ContactUseCase = (*MockContactUseCase)(nil)

// Set mocks the Set method of ContactUseCase.
func (m *MockContactUseCase) Set(
	ctx context.Context,
	contacts []certificatesDomain.Contact,
) (*certificatesDomain.Contacts, error) {
	return ptr[certificatesDomain.Contacts](m.Called(ctx, contacts))
}

// Get mocks the Get method of ContactUseCase.
func (m *MockContactUseCase) Get(ctx context.Context) (*certificatesDomain.Contacts, error) {
	return ptr[certificatesDomain.Contacts](m.Called(ctx))
}

// Delete mocks the Delete method of ContactUseCase.
func (m *MockContactUseCase) Delete(ctx context.Context) (*certificatesDomain.Contacts, error) {
	return ptr[certificatesDomain.Contacts](m.Called(ctx))
}
