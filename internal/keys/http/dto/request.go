// Package dto provides data transfer objects for key HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	entityDto "github.com/allisson/keyvault-emulator/internal/entity/http/dto"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	keysUsecase "github.com/allisson/keyvault-emulator/internal/keys/usecase"
	customValidation "github.com/allisson/keyvault-emulator/internal/validation"
)

func keyOperationValues() []interface{} {
	out := make([]interface{}, 0, len(keysDomain.AllKeyOperations))
	for _, op := range keysDomain.AllKeyOperations {
		out = append(out, string(op))
	}
	return out
}

func toKeyOperations(ops []string) []keysDomain.KeyOperation {
	if len(ops) == 0 {
		return nil
	}
	out := make([]keysDomain.KeyOperation, 0, len(ops))
	for _, op := range ops {
		out = append(out, keysDomain.KeyOperation(op))
	}
	return out
}

// CreateKeyRequest contains the parameters for generating a key.
type CreateKeyRequest struct {
	KeyType    string                       `json:"kty"`
	KeySize    int                          `json:"key_size,omitempty"`
	KeyOps     []string                     `json:"key_ops,omitempty"`
	Attributes *entityDto.AttributesRequest `json:"attributes,omitempty"`
	Tags       map[string]string            `json:"tags,omitempty"`
}

// Validate checks if the create key request is valid.
func (r *CreateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.KeyType, validation.Required, customValidation.NotBlank),
		validation.Field(&r.KeySize, validation.Min(0)),
		validation.Field(&r.KeyOps, validation.Each(validation.In(keyOperationValues()...))),
		validation.Field(&r.Attributes),
	)
}

// ToInput converts the request into use case input.
func (r *CreateKeyRequest) ToInput() keysUsecase.CreateKeyInput {
	return keysUsecase.CreateKeyInput{
		KeyType:    keysDomain.KeyType(r.KeyType),
		KeySize:    r.KeySize,
		KeyOps:     toKeyOperations(r.KeyOps),
		Attributes: r.Attributes.ToPatch(),
		Tags:       r.Tags,
	}
}

// JSONWebKeyRequest is key material in JSON web key form. Byte fields are base64url.
type JSONWebKeyRequest struct {
	Kty    string   `json:"kty"`
	KeyOps []string `json:"key_ops,omitempty"`
	N      string   `json:"n"`
	E      string   `json:"e"`
	D      string   `json:"d,omitempty"`
	P      string   `json:"p,omitempty"`
	Q      string   `json:"q,omitempty"`
	DP     string   `json:"dp,omitempty"`
	DQ     string   `json:"dq,omitempty"`
	QI     string   `json:"qi,omitempty"`
}

// Validate checks if the key material is well formed.
func (k JSONWebKeyRequest) Validate() error {
	return validation.ValidateStruct(&k,
		validation.Field(&k.Kty, validation.Required),
		validation.Field(&k.KeyOps, validation.Each(validation.In(keyOperationValues()...))),
		validation.Field(&k.N, validation.Required, customValidation.Base64URL),
		validation.Field(&k.E, validation.Required, customValidation.Base64URL),
		validation.Field(&k.D, customValidation.Base64URL),
		validation.Field(&k.P, customValidation.Base64URL),
		validation.Field(&k.Q, customValidation.Base64URL),
		validation.Field(&k.DP, customValidation.Base64URL),
		validation.Field(&k.DQ, customValidation.Base64URL),
		validation.Field(&k.QI, customValidation.Base64URL),
	)
}

// ToDomain decodes the key material. Validate must have succeeded.
func (k JSONWebKeyRequest) ToDomain() keysDomain.JSONWebKey {
	decode := func(s string) []byte {
		if s == "" {
			return nil
		}
		b, _ := customValidation.DecodeBase64URL(s)
		return b
	}

	return keysDomain.JSONWebKey{
		Kty:    keysDomain.KeyType(k.Kty),
		KeyOps: toKeyOperations(k.KeyOps),
		N:      decode(k.N),
		E:      decode(k.E),
		D:      decode(k.D),
		P:      decode(k.P),
		Q:      decode(k.Q),
		DP:     decode(k.DP),
		DQ:     decode(k.DQ),
		QI:     decode(k.QI),
	}
}

// ImportKeyRequest contains caller-supplied key material.
type ImportKeyRequest struct {
	Key        JSONWebKeyRequest            `json:"key"`
	HSM        bool                         `json:"Hsm,omitempty"`
	Attributes *entityDto.AttributesRequest `json:"attributes,omitempty"`
	Tags       map[string]string            `json:"tags,omitempty"`
}

// Validate checks if the import key request is valid.
func (r *ImportKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key),
		validation.Field(&r.Attributes),
	)
}

// ToInput converts the request into use case input.
func (r *ImportKeyRequest) ToInput() keysUsecase.ImportKeyInput {
	return keysUsecase.ImportKeyInput{
		Key:        r.Key.ToDomain(),
		HSM:        r.HSM,
		Attributes: r.Attributes.ToPatch(),
		Tags:       r.Tags,
	}
}

// KeyOperationRequest is the body of encrypt, decrypt, sign, wrapkey and unwrapkey.
type KeyOperationRequest struct {
	Algorithm string `json:"alg"`
	Value     string `json:"value"`
}

// Validate checks if the key operation request is valid.
func (r *KeyOperationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Algorithm, validation.Required),
		validation.Field(&r.Value, validation.Required, customValidation.Base64URL),
	)
}

// DecodedValue returns the decoded operation input. Validate must have succeeded.
func (r *KeyOperationRequest) DecodedValue() []byte {
	b, _ := customValidation.DecodeBase64URL(r.Value)
	return b
}

// VerifyRequest is the body of verify.
type VerifyRequest struct {
	Algorithm string `json:"alg"`
	Digest    string `json:"digest"`
	Value     string `json:"value"`
}

// Validate checks if the verify request is valid.
func (r *VerifyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Algorithm, validation.Required),
		validation.Field(&r.Digest, validation.Required, customValidation.Base64URL),
		validation.Field(&r.Value, validation.Required, customValidation.Base64URL),
	)
}

// Decoded returns the decoded digest and signature. Validate must have succeeded.
func (r *VerifyRequest) Decoded() ([]byte, []byte) {
	digest, _ := customValidation.DecodeBase64URL(r.Digest)
	signature, _ := customValidation.DecodeBase64URL(r.Value)
	return digest, signature
}

// RandomBytesRequest asks for random bytes.
type RandomBytesRequest struct {
	Count int `json:"count"`
}

// Validate checks if the random bytes request is valid.
func (r *RandomBytesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Count, validation.Required, validation.Min(1), validation.Max(128)),
	)
}
