package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	"github.com/allisson/keyvault-emulator/internal/metrics"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
	secretsUsecase "github.com/allisson/keyvault-emulator/internal/secrets/usecase"
	"github.com/allisson/keyvault-emulator/internal/secrets/usecase/mocks"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectMetrics(ctx context.Context, m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", ctx, "secrets", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "secrets", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestNewSecretUseCaseWithMetrics(t *testing.T) {
	decorator := secretsUsecase.NewSecretUseCaseWithMetrics(&mocks.MockSecretUseCase{}, &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*secretsUsecase.SecretUseCase)(nil), decorator)
}

func TestMetricsDecorator_Set(t *testing.T) {
	ctx := context.Background()
	input := secretsUsecase.SetSecretInput{Value: "hunter2"}

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		useCase := &mocks.MockSecretUseCase{}
		m := &mockBusinessMetrics{}
		expected := &domain.Record[secretsDomain.Secret]{Name: "password", Version: "v1"}

		useCase.On("Set", ctx, "password", input).Return(expected, nil).Once()
		expectMetrics(ctx, m, "secret_set", "success")

		record, err := secretsUsecase.NewSecretUseCaseWithMetrics(useCase, m).Set(ctx, "password", input)

		require.NoError(t, err)
		assert.Equal(t, expected, record)
		useCase.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		useCase := &mocks.MockSecretUseCase{}
		m := &mockBusinessMetrics{}
		expectedErr := errors.New("boom")

		useCase.On("Set", ctx, "password", input).Return(nil, expectedErr).Once()
		expectMetrics(ctx, m, "secret_set", "error")

		record, err := secretsUsecase.NewSecretUseCaseWithMetrics(useCase, m).Set(ctx, "password", input)

		assert.Nil(t, record)
		assert.Equal(t, expectedErr, err)
		m.AssertExpectations(t)
	})
}

func TestMetricsDecorator_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Delete", func(t *testing.T) {
		useCase := &mocks.MockSecretUseCase{}
		m := &mockBusinessMetrics{}
		expected := &domain.DeletedRecord[secretsDomain.Secret]{RecoveryID: "rid"}

		useCase.On("Delete", ctx, "password").Return(expected, nil).Once()
		expectMetrics(ctx, m, "secret_delete", "success")

		deleted, err := secretsUsecase.NewSecretUseCaseWithMetrics(useCase, m).Delete(ctx, "password")

		require.NoError(t, err)
		assert.Equal(t, "rid", deleted.RecoveryID)
		m.AssertExpectations(t)
	})

	t.Run("Success_Purge", func(t *testing.T) {
		useCase := &mocks.MockSecretUseCase{}
		m := &mockBusinessMetrics{}

		useCase.On("Purge", ctx, "password").Return(nil).Once()
		expectMetrics(ctx, m, "secret_purge", "success")

		require.NoError(t, secretsUsecase.NewSecretUseCaseWithMetrics(useCase, m).Purge(ctx, "password"))
		m.AssertExpectations(t)
	})

	t.Run("Error_Restore", func(t *testing.T) {
		useCase := &mocks.MockSecretUseCase{}
		m := &mockBusinessMetrics{}

		useCase.On("Restore", ctx, "blob").Return(nil, domain.ErrEntityExists).Once()
		expectMetrics(ctx, m, "secret_restore", "conflict")

		_, err := secretsUsecase.NewSecretUseCaseWithMetrics(useCase, m).Restore(ctx, "blob")

		assert.ErrorIs(t, err, domain.ErrEntityExists)
		m.AssertExpectations(t)
	})

	t.Run("Success_ListVersions", func(t *testing.T) {
		useCase := &mocks.MockSecretUseCase{}
		m := &mockBusinessMetrics{}
		expected := &domain.Page[secretsDomain.Secret]{}

		useCase.On("ListVersions", ctx, "password", "", 25).Return(expected, nil).Once()
		expectMetrics(ctx, m, "secret_list_versions", "success")

		page, err := secretsUsecase.NewSecretUseCaseWithMetrics(useCase, m).ListVersions(ctx, "password", "", 25)

		require.NoError(t, err)
		assert.Same(t, expected, page)
		m.AssertExpectations(t)
	})
}
