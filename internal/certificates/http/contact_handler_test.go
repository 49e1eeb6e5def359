package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	"github.com/allisson/keyvault-emulator/internal/certificates/http/dto"
	"github.com/allisson/keyvault-emulator/internal/certificates/usecase/mocks"
)

func setupContactHandler(t *testing.T) (*ContactHandler, *mocks.MockContactUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockContactUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })

	return NewContactHandler(mockUseCase, testLogger()), mockUseCase
}

func TestContactHandler(t *testing.T) {
	contacts := []certificatesDomain.Contact{{Email: "admin@example.com", Name: "Admin"}}
	stored := &certificatesDomain.Contacts{ID: "https://vault.test/certificates/contacts", Contacts: contacts}

	t.Run("Success_Set", func(t *testing.T) {
		handler, mockUseCase := setupContactHandler(t)

		mockUseCase.On("Set", mock.Anything, contacts).Return(stored, nil).Once()

		c, w := createTestContext(http.MethodPut, "/certificates/contacts", dto.ContactsRequest{
			Contacts: []dto.ContactRequest{{Email: "admin@example.com", Name: "Admin"}},
		})

		handler.SetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"id": "https://vault.test/certificates/contacts",
			"contacts": [{"email": "admin@example.com", "name": "Admin"}]
		}`, w.Body.String())
	})

	t.Run("Error_SetEmpty", func(t *testing.T) {
		handler, _ := setupContactHandler(t)

		c, w := createTestContext(http.MethodPut, "/certificates/contacts", dto.ContactsRequest{})

		handler.SetHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_GetMissing", func(t *testing.T) {
		handler, mockUseCase := setupContactHandler(t)

		mockUseCase.On("Get", mock.Anything).Return(nil, certificatesDomain.ErrContactsNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/certificates/contacts", nil)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Success_Delete", func(t *testing.T) {
		handler, mockUseCase := setupContactHandler(t)

		mockUseCase.On("Delete", mock.Anything).Return(stored, nil).Once()

		c, w := createTestContext(http.MethodDelete, "/certificates/contacts", nil)

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
