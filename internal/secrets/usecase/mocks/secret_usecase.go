// Package mocks provides mock implementations of the secret use case for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
	secretsUsecase "github.com/allisson/keyvault-emulator/internal/secrets/usecase"
)

// MockSecretUseCase is a mock implementation of SecretUseCase for testing.
type MockSecretUseCase struct {
	mock.Mock
}

var _ secretsUsecase.SecretUseCase = (*MockSecretUseCase)(nil)

func record(args mock.Arguments) (*domain.Record[secretsDomain.Secret], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record[secretsDomain.Secret]), args.Error(1)
}

func deleted(args mock.Arguments) (*domain.DeletedRecord[secretsDomain.Secret], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletedRecord[secretsDomain.Secret]), args.Error(1)
}

func page(args mock.Arguments) (*domain.Page[secretsDomain.Secret], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[secretsDomain.Secret]), args.Error(1)
}

// Set mocks the Set method of SecretUseCase.
func (m *MockSecretUseCase) Set(
	ctx context.Context,
	name string,
	input secretsUsecase.SetSecretInput,
) (*domain.Record[secretsDomain.Secret], error) {
	return record(m.Called(ctx, name, input))
}

// Get mocks the Get method of SecretUseCase.
func (m *MockSecretUseCase) Get(
	ctx context.Context,
	name, version string,
) (*domain.Record[secretsDomain.Secret], error) {
	return record(m.Called(ctx, name, version))
}

// Update mocks the Update method of SecretUseCase.
func (m *MockSecretUseCase) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[secretsDomain.Secret], error) {
	return record(m.Called(ctx, name, version, patch))
}

// List mocks the List method of SecretUseCase.
func (m *MockSecretUseCase) List(
	ctx context.Context,
	cursor string,
	take int,
) (*domain.Page[secretsDomain.Secret], error) {
	return page(m.Called(ctx, cursor, take))
}

// ListVersions mocks the ListVersions method of SecretUseCase.
func (m *MockSecretUseCase) ListVersions(
	ctx context.Context,
	name, cursor string,
	take int,
) (*domain.Page[secretsDomain.Secret], error) {
	return page(m.Called(ctx, name, cursor, take))
}

// Delete mocks the Delete method of SecretUseCase.
func (m *MockSecretUseCase) Delete(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[secretsDomain.Secret], error) {
	return deleted(m.Called(ctx, name))
}

// GetDeleted mocks the GetDeleted method of SecretUseCase.
func (m *MockSecretUseCase) GetDeleted(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[secretsDomain.Secret], error) {
	return deleted(m.Called(ctx, name))
}

// ListDeleted mocks the ListDeleted method of SecretUseCase.
func (m *MockSecretUseCase) ListDeleted(
	ctx context.Context,
	cursor string,
	take int,
) (*domain.Page[secretsDomain.Secret], error) {
	return page(m.Called(ctx, cursor, take))
}

// Recover mocks the Recover method of SecretUseCase.
func (m *MockSecretUseCase) Recover(ctx context.Context, name string) (*domain.Record[secretsDomain.Secret], error) {
	return record(m.Called(ctx, name))
}

// Purge mocks the Purge method of SecretUseCase.
func (m *MockSecretUseCase) Purge(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// Backup mocks the Backup method of SecretUseCase.
func (m *MockSecretUseCase) Backup(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// Restore mocks the Restore method of SecretUseCase.
func (m *MockSecretUseCase) Restore(ctx context.Context, blob string) (*domain.Record[secretsDomain.Secret], error) {
	return record(m.Called(ctx, blob))
}
