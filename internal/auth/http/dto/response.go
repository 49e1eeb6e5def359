package dto

import (
	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
)

// TokenResponse contains an issued access token in the OAuth2 token-response shape.
type TokenResponse struct {
	AccessToken string `json:"access_token"` //nolint:gosec // returned to the caller that asked for it
	TokenType   string `json:"token_type"`
	Resource    string `json:"resource,omitempty"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresOn   int64  `json:"expires_on"`
}

// MapTokenToResponse converts an issued token to an API response.
func MapTokenToResponse(token *authDomain.Token) TokenResponse {
	return TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Resource:    token.Resource,
		ExpiresIn:   token.ExpiresIn,
		ExpiresOn:   token.ExpiresOn.Unix(),
	}
}
