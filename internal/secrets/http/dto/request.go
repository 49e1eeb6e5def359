// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	entityDto "github.com/allisson/keyvault-emulator/internal/entity/http/dto"
	secretsUsecase "github.com/allisson/keyvault-emulator/internal/secrets/usecase"
)

// SetSecretRequest contains the parameters for writing a secret version.
// The name is extracted from the URL parameter, not the request body.
type SetSecretRequest struct {
	Value       *string                      `json:"value"`
	ContentType string                       `json:"contentType,omitempty"`
	Attributes  *entityDto.AttributesRequest `json:"attributes,omitempty"`
	Tags        map[string]string            `json:"tags,omitempty"`
}

// Validate checks if the set secret request is valid. An empty value is allowed,
// a missing one is not.
func (r *SetSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value, validation.NotNil),
		validation.Field(&r.Attributes),
	)
}

// ToInput converts the request into use case input.
func (r *SetSecretRequest) ToInput() secretsUsecase.SetSecretInput {
	var value string
	if r.Value != nil {
		value = *r.Value
	}
	return secretsUsecase.SetSecretInput{
		Value:       value,
		ContentType: r.ContentType,
		Attributes:  r.Attributes.ToPatch(),
		Tags:        r.Tags,
	}
}
