// Package domain defines the bearer-token model used to authenticate vault clients.
//
// Tokens are self-contained HS256 JWTs: nothing is persisted, and a token is valid for
// as long as its signature checks out and its expiry has not passed.
package domain

import "time"

// TokenType is the scheme clients put in front of the access token.
const TokenType = "Bearer"

// DefaultSubject identifies callers that did not name themselves when asking for a token.
const DefaultSubject = "keyvault-emulator-client"

// IssueTokenInput contains the claims requested for a new token.
type IssueTokenInput struct {
	Subject  string
	Resource string
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	Resource    string
	ExpiresIn   int64
	ExpiresOn   time.Time
}

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	Subject   string
	Resource  string
	ExpiresAt time.Time
}
