package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
	authService "github.com/allisson/keyvault-emulator/internal/auth/service"
)

// mockTokenService is a mock implementation of TokenService for testing.
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Sign(identity authDomain.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) Verify(plainToken string) (*authDomain.Identity, error) {
	args := m.Called(plainToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Identity), args.Error(1)
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func TestTokenUseCase_Issue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Success_DefaultSubject", func(t *testing.T) {
		svc := &mockTokenService{}
		uc := &tokenUseCase{tokenService: svc, expiration: time.Hour, clock: fixedClock(now)}

		svc.On("Sign", authDomain.Identity{
			Subject:   authDomain.DefaultSubject,
			Resource:  "https://vault.test",
			ExpiresAt: now.Add(time.Hour),
		}).Return("signed-token", nil).Once()

		token, err := uc.Issue(ctx, &authDomain.IssueTokenInput{Resource: "https://vault.test"})
		require.NoError(t, err)
		assert.Equal(t, "signed-token", token.AccessToken)
		assert.Equal(t, authDomain.TokenType, token.TokenType)
		assert.Equal(t, "https://vault.test", token.Resource)
		assert.Equal(t, int64(3600), token.ExpiresIn)
		assert.Equal(t, now.Add(time.Hour), token.ExpiresOn)
		svc.AssertExpectations(t)
	})

	t.Run("Error_SubjectWithWhitespace", func(t *testing.T) {
		svc := &mockTokenService{}
		uc := &tokenUseCase{tokenService: svc, expiration: time.Hour, clock: fixedClock(now)}

		_, err := uc.Issue(ctx, &authDomain.IssueTokenInput{Subject: "two words"})
		assert.ErrorIs(t, err, authDomain.ErrInvalidSubject)
		svc.AssertNotCalled(t, "Sign", mock.Anything)
	})

	t.Run("Error_SubjectTooLong", func(t *testing.T) {
		svc := &mockTokenService{}
		uc := &tokenUseCase{tokenService: svc, expiration: time.Hour, clock: fixedClock(now)}

		_, err := uc.Issue(ctx, &authDomain.IssueTokenInput{Subject: strings.Repeat("a", 257)})
		assert.ErrorIs(t, err, authDomain.ErrInvalidSubject)
	})

	t.Run("Error_SignFails", func(t *testing.T) {
		svc := &mockTokenService{}
		uc := &tokenUseCase{tokenService: svc, expiration: time.Hour, clock: fixedClock(now)}
		signErr := errors.New("sign failed")

		svc.On("Sign", mock.Anything).Return("", signErr).Once()

		token, err := uc.Issue(ctx, &authDomain.IssueTokenInput{Subject: "client"})
		assert.ErrorIs(t, err, signErr)
		assert.Nil(t, token)
	})
}

func TestTokenUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc := &mockTokenService{}
		uc := NewTokenUseCase(svc, time.Hour)
		identity := &authDomain.Identity{Subject: "client"}

		svc.On("Verify", "token").Return(identity, nil).Once()

		got, err := uc.Authenticate(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, identity, got)
	})

	t.Run("Error_EmptyToken", func(t *testing.T) {
		svc := &mockTokenService{}
		uc := NewTokenUseCase(svc, time.Hour)

		_, err := uc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
		svc.AssertNotCalled(t, "Verify", mock.Anything)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		svc := &mockTokenService{}
		uc := NewTokenUseCase(svc, time.Hour)

		svc.On("Verify", "old").Return(nil, authDomain.ErrTokenExpired).Once()

		_, err := uc.Authenticate(ctx, "old")
		assert.ErrorIs(t, err, authDomain.ErrTokenExpired)
	})
}

func TestTokenUseCase_IssueThenAuthenticate(t *testing.T) {
	svc, err := authService.NewTokenService([]byte("integration-key"))
	require.NoError(t, err)
	uc := NewTokenUseCase(svc, time.Minute)

	token, err := uc.Issue(context.Background(), &authDomain.IssueTokenInput{Subject: "ci-runner"})
	require.NoError(t, err)

	identity, err := uc.Authenticate(context.Background(), token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ci-runner", identity.Subject)
	assert.True(t, token.ExpiresOn.Equal(identity.ExpiresAt))
}
