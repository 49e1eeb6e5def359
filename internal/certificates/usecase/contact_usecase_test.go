package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	"github.com/allisson/keyvault-emulator/internal/entity/repository"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

func TestContactUseCase(t *testing.T) {
	useCase := NewContactUseCase(repository.NewMemoryDocumentRepository[certificatesDomain.Contacts](), testIDs)
	ctx := context.Background()
	contacts := []certificatesDomain.Contact{{Email: "admin@example.com", Name: "Admin"}}

	t.Run("Error_GetEmpty", func(t *testing.T) {
		_, err := useCase.Get(ctx)
		assert.ErrorIs(t, err, certificatesDomain.ErrContactsNotFound)
	})

	t.Run("Error_SetInvalid", func(t *testing.T) {
		_, err := useCase.Set(ctx, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = useCase.Set(ctx, []certificatesDomain.Contact{{}})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Success_Set", func(t *testing.T) {
		got, err := useCase.Set(ctx, contacts)
		require.NoError(t, err)
		assert.Equal(t, "https://vault.test/certificates/contacts", got.ID)
		assert.Equal(t, contacts, got.Contacts)

		again, err := useCase.Set(ctx, contacts)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	})

	t.Run("Success_Delete", func(t *testing.T) {
		deleted, err := useCase.Delete(ctx)
		require.NoError(t, err)
		assert.Equal(t, contacts, deleted.Contacts)

		_, err = useCase.Delete(ctx)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
