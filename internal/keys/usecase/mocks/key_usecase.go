// Package mocks provides mock implementations of the key use case for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	keysUsecase "github.com/allisson/keyvault-emulator/internal/keys/usecase"
)

// MockKeyUseCase is a mock implementation of KeyUseCase for testing.
type MockKeyUseCase struct {
	mock.Mock
}

var _ keysUsecase.KeyUseCase = (*MockKeyUseCase)(nil)

func record(args mock.Arguments) (*domain.Record[keysDomain.Key], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record[keysDomain.Key]), args.Error(1)
}

func deleted(args mock.Arguments) (*domain.DeletedRecord[keysDomain.Key], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletedRecord[keysDomain.Key]), args.Error(1)
}

func page(args mock.Arguments) (*domain.Page[keysDomain.Key], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[keysDomain.Key]), args.Error(1)
}

func result(args mock.Arguments) (*keysUsecase.OperationResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysUsecase.OperationResult), args.Error(1)
}

// Create mocks the Create method of KeyUseCase.
func (m *MockKeyUseCase) Create(
	ctx context.Context,
	name string,
	input keysUsecase.CreateKeyInput,
) (*domain.Record[keysDomain.Key], error) {
	return record(m.Called(ctx, name, input))
}

// Import mocks the Import method of KeyUseCase.
func (m *MockKeyUseCase) Import(
	ctx context.Context,
	name string,
	input keysUsecase.ImportKeyInput,
) (*domain.Record[keysDomain.Key], error) {
	return record(m.Called(ctx, name, input))
}

// Get mocks the Get method of KeyUseCase.
func (m *MockKeyUseCase) Get(ctx context.Context, name, version string) (*domain.Record[keysDomain.Key], error) {
	return record(m.Called(ctx, name, version))
}

// Update mocks the Update method of KeyUseCase.
func (m *MockKeyUseCase) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[keysDomain.Key], error) {
	return record(m.Called(ctx, name, version, patch))
}

// List mocks the List method of KeyUseCase.
func (m *MockKeyUseCase) List(ctx context.Context, cursor string, take int) (*domain.Page[keysDomain.Key], error) {
	return page(m.Called(ctx, cursor, take))
}

// ListVersions mocks the ListVersions method of KeyUseCase.
func (m *MockKeyUseCase) ListVersions(
	ctx context.Context,
	name, cursor string,
	take int,
) (*domain.Page[keysDomain.Key], error) {
	return page(m.Called(ctx, name, cursor, take))
}

// Delete mocks the Delete method of KeyUseCase.
func (m *MockKeyUseCase) Delete(ctx context.Context, name string) (*domain.DeletedRecord[keysDomain.Key], error) {
	return deleted(m.Called(ctx, name))
}

// GetDeleted mocks the GetDeleted method of KeyUseCase.
func (m *MockKeyUseCase) GetDeleted(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[keysDomain.Key], error) {
	return deleted(m.Called(ctx, name))
}

// ListDeleted mocks the ListDeleted method of KeyUseCase.
func (m *MockKeyUseCase) ListDeleted(
	ctx context.Context,
	cursor string,
	take int,
) (*domain.Page[keysDomain.Key], error) {
	return page(m.Called(ctx, cursor, take))
}

// Recover mocks the Recover method of KeyUseCase.
func (m *MockKeyUseCase) Recover(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error) {
	return record(m.Called(ctx, name))
}

// Purge mocks the Purge method of KeyUseCase.
func (m *MockKeyUseCase) Purge(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// Backup mocks the Backup method of KeyUseCase.
func (m *MockKeyUseCase) Backup(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// Restore mocks the Restore method of KeyUseCase.
func (m *MockKeyUseCase) Restore(ctx context.Context, blob string) (*domain.Record[keysDomain.Key], error) {
	return record(m.Called(ctx, blob))
}

// Rotate mocks the Rotate method of KeyUseCase.
func (m *MockKeyUseCase) Rotate(ctx context.Context, name string) (*domain.Record[keysDomain.Key], error) {
	return record(m.Called(ctx, name))
}

// Encrypt mocks the Encrypt method of KeyUseCase.
func (m *MockKeyUseCase) Encrypt(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	plaintext []byte,
) (*keysUsecase.OperationResult, error) {
	return result(m.Called(ctx, name, version, alg, plaintext))
}

// Decrypt mocks the Decrypt method of KeyUseCase.
func (m *MockKeyUseCase) Decrypt(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	ciphertext []byte,
) (*keysUsecase.OperationResult, error) {
	return result(m.Called(ctx, name, version, alg, ciphertext))
}

// WrapKey mocks the WrapKey method of KeyUseCase.
func (m *MockKeyUseCase) WrapKey(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	key []byte,
) (*keysUsecase.OperationResult, error) {
	return result(m.Called(ctx, name, version, alg, key))
}

// UnwrapKey mocks the UnwrapKey method of KeyUseCase.
func (m *MockKeyUseCase) UnwrapKey(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	wrapped []byte,
) (*keysUsecase.OperationResult, error) {
	return result(m.Called(ctx, name, version, alg, wrapped))
}

// Sign mocks the Sign method of KeyUseCase.
func (m *MockKeyUseCase) Sign(
	ctx context.Context,
	name, version string,
	alg keysDomain.SignatureAlgorithm,
	digest []byte,
) (*keysUsecase.OperationResult, error) {
	return result(m.Called(ctx, name, version, alg, digest))
}

// Verify mocks the Verify method of KeyUseCase.
func (m *MockKeyUseCase) Verify(
	ctx context.Context,
	name, version string,
	alg keysDomain.SignatureAlgorithm,
	digest, signature []byte,
) (bool, error) {
	args := m.Called(ctx, name, version, alg, digest, signature)
	return args.Bool(0), args.Error(1)
}

// GetRandomBytes mocks the GetRandomBytes method of KeyUseCase.
func (m *MockKeyUseCase) GetRandomBytes(ctx context.Context, count int) ([]byte, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
