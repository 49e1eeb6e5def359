// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
	customValidation "github.com/allisson/keyvault-emulator/internal/validation"
)

// IssueTokenRequest contains the query parameters of a token request.
type IssueTokenRequest struct {
	Subject  string `form:"subject"`
	Resource string `form:"resource"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Subject,
			customValidation.NoWhitespace,
			validation.Length(0, 256),
		),
		validation.Field(&r.Resource, customValidation.AbsoluteURL),
	)
}

// ToInput converts the request to the use case input.
func (r *IssueTokenRequest) ToInput() *authDomain.IssueTokenInput {
	return &authDomain.IssueTokenInput{
		Subject:  r.Subject,
		Resource: r.Resource,
	}
}
