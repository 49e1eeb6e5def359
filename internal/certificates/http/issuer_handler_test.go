package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	"github.com/allisson/keyvault-emulator/internal/certificates/http/dto"
	certificatesUseCase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	"github.com/allisson/keyvault-emulator/internal/certificates/usecase/mocks"
	"github.com/allisson/keyvault-emulator/internal/httputil"
)

func setupIssuerHandler(t *testing.T) (*IssuerHandler, *mocks.MockIssuerUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockIssuerUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })

	return NewIssuerHandler(mockUseCase, testLogger()), mockUseCase
}

func testIssuer(name string) *certificatesDomain.Issuer {
	return &certificatesDomain.Issuer{
		ID:          "https://vault.test/certificates/issuers/" + name,
		Name:        name,
		Provider:    "DigiCert",
		Credentials: &certificatesDomain.IssuerCredentials{AccountID: "acct", Password: "pw"},
		Attributes:  certificatesDomain.IssuerAttributes{Enabled: true, Created: 1, Updated: 1},
	}
}

func TestIssuerHandler_SetHandler(t *testing.T) {
	t.Run("Success_PasswordNotReturned", func(t *testing.T) {
		handler, mockUseCase := setupIssuerHandler(t)

		input := certificatesUseCase.IssuerInput{
			Provider:    "DigiCert",
			Credentials: &certificatesDomain.IssuerCredentials{AccountID: "acct", Password: "pw"},
		}
		mockUseCase.On("Set", mock.Anything, "digicert", input).Return(testIssuer("digicert"), nil).Once()

		c, w := createTestContext(http.MethodPut, "/certificates/issuers/digicert", map[string]any{
			"provider":    "DigiCert",
			"credentials": map[string]any{"account_id": "acct", "pwd": "pw"},
		})
		c.Params = gin.Params{{Key: "name", Value: "digicert"}}

		handler.SetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "pwd")

		var response dto.IssuerBundleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "acct", response.Credentials.AccountID)
	})

	t.Run("Error_MissingProvider", func(t *testing.T) {
		handler, _ := setupIssuerHandler(t)

		c, w := createTestContext(http.MethodPut, "/certificates/issuers/digicert", map[string]any{})
		c.Params = gin.Params{{Key: "name", Value: "digicert"}}

		handler.SetHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIssuerHandler_GetUpdateDelete(t *testing.T) {
	t.Run("Error_GetMissing", func(t *testing.T) {
		handler, mockUseCase := setupIssuerHandler(t)

		mockUseCase.On("Get", mock.Anything, "digicert").Return(nil, certificatesDomain.ErrIssuerNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/certificates/issuers/digicert", nil)
		c.Params = gin.Params{{Key: "name", Value: "digicert"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Success_Update", func(t *testing.T) {
		handler, mockUseCase := setupIssuerHandler(t)

		enabled := false
		patch := certificatesDomain.IssuerPatch{Enabled: &enabled}
		mockUseCase.On("Update", mock.Anything, "digicert", patch).Return(testIssuer("digicert"), nil).Once()

		c, w := createTestContext(http.MethodPatch, "/certificates/issuers/digicert", map[string]any{
			"attributes": map[string]any{"enabled": false},
		})
		c.Params = gin.Params{{Key: "name", Value: "digicert"}}

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Success_Delete", func(t *testing.T) {
		handler, mockUseCase := setupIssuerHandler(t)

		mockUseCase.On("Delete", mock.Anything, "digicert").Return(testIssuer("digicert"), nil).Once()

		c, w := createTestContext(http.MethodDelete, "/certificates/issuers/digicert", nil)
		c.Params = gin.Params{{Key: "name", Value: "digicert"}}

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestIssuerHandler_ListHandler(t *testing.T) {
	handler, mockUseCase := setupIssuerHandler(t)

	mockUseCase.On("List", mock.Anything).
		Return([]*certificatesDomain.Issuer{testIssuer("digicert")}, nil).
		Once()

	c, w := createTestContext(http.MethodGet, "/certificates/issuers", nil)

	handler.ListHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response httputil.ListResponse[dto.IssuerItemResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Nil(t, response.NextLink)
	assert.Equal(t, []dto.IssuerItemResponse{{
		ID:       "https://vault.test/certificates/issuers/digicert",
		Provider: "DigiCert",
	}}, response.Value)
}
