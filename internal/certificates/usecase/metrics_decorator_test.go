package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	certificatesUsecase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	"github.com/allisson/keyvault-emulator/internal/certificates/usecase/mocks"
	"github.com/allisson/keyvault-emulator/internal/metrics"
)

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
	m.On("RecordOperation", ctx, "certificates", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "certificates", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestNewCertificateUseCaseWithMetrics(t *testing.T) {
	decorator := certificatesUsecase.NewCertificateUseCaseWithMetrics(
		&mocks.MockCertificateUseCase{},
		&mockBusinessMetrics{},
	)

	assert.NotNil(t, decorator)
	assert.Implements(t, (*certificatesUsecase.CertificateUseCase)(nil), decorator)
}

func TestMetricsDecorator_Create(t *testing.T) {
	ctx := context.Background()
	input := certificatesUsecase.CreateCertificateInput{}

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		useCase := &mocks.MockCertificateUseCase{}
		m := &mockBusinessMetrics{}
		expected := &certificatesDomain.Operation{ID: "op", Status: certificatesDomain.StatusCompleted}

		useCase.On("Create", ctx, "cert", input).Return(expected, nil).Once()
		expectMetrics(ctx, m, "certificate_create", "success")

		op, err := certificatesUsecase.NewCertificateUseCaseWithMetrics(useCase, m).Create(ctx, "cert", input)

		require.NoError(t, err)
		assert.Equal(t, expected, op)
		useCase.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		useCase := &mocks.MockCertificateUseCase{}
		m := &mockBusinessMetrics{}
		expectedErr := errors.New("boom")

		useCase.On("Create", ctx, "cert", input).Return(nil, expectedErr).Once()
		expectMetrics(ctx, m, "certificate_create", "error")

		op, err := certificatesUsecase.NewCertificateUseCaseWithMetrics(useCase, m).Create(ctx, "cert", input)

		assert.Nil(t, op)
		assert.Equal(t, expectedErr, err)
		useCase.AssertExpectations(t)
		m.AssertExpectations(t)
	})
}

func TestMetricsDecorator_Purge(t *testing.T) {
	ctx := context.Background()
	useCase := &mocks.MockCertificateUseCase{}
	m := &mockBusinessMetrics{}

	useCase.On("Purge", ctx, "cert").Return(nil).Once()
	expectMetrics(ctx, m, "certificate_purge", "success")

	err := certificatesUsecase.NewCertificateUseCaseWithMetrics(useCase, m).Purge(ctx, "cert")

	require.NoError(t, err)
	useCase.AssertExpectations(t)
	m.AssertExpectations(t)
}

func TestMetricsDecorator_Backup(t *testing.T) {
	ctx := context.Background()
	useCase := &mocks.MockCertificateUseCase{}
	m := &mockBusinessMetrics{}

	useCase.On("Backup", ctx, "cert").Return("", errors.New("not found")).Once()
	expectMetrics(ctx, m, "certificate_backup", "error")

	blob, err := certificatesUsecase.NewCertificateUseCaseWithMetrics(useCase, m).Backup(ctx, "cert")

	assert.Error(t, err)
	assert.Empty(t, blob)
	useCase.AssertExpectations(t)
	m.AssertExpectations(t)
}

func TestMetricsDecorator_UpdatePolicy(t *testing.T) {
	ctx := context.Background()
	useCase := &mocks.MockCertificateUseCase{}
	m := &mockBusinessMetrics{}
	patch := certificatesDomain.PolicyPatch{}
	expected := &certificatesDomain.Policy{}

	useCase.On("UpdatePolicy", ctx, "cert", patch).Return(expected, nil).Once()
	expectMetrics(ctx, m, "certificate_policy_update", "success")

	policy, err := certificatesUsecase.NewCertificateUseCaseWithMetrics(useCase, m).UpdatePolicy(ctx, "cert", patch)

	require.NoError(t, err)
	assert.Equal(t, expected, policy)
	useCase.AssertExpectations(t)
	m.AssertExpectations(t)
}
