package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
)

func TestMapTokenToResponse(t *testing.T) {
	token := &authDomain.Token{
		AccessToken: "abc",
		TokenType:   authDomain.TokenType,
		ExpiresIn:   60,
		ExpiresOn:   time.Unix(1700000000, 0),
	}

	body, err := json.Marshal(MapTokenToResponse(token))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"access_token": "abc",
		"token_type": "Bearer",
		"expires_in": 60,
		"expires_on": 1700000000
	}`, string(body))
}
