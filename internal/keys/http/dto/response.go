package dto

import (
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	entityDto "github.com/allisson/keyvault-emulator/internal/entity/http/dto"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	keysUsecase "github.com/allisson/keyvault-emulator/internal/keys/usecase"
	customValidation "github.com/allisson/keyvault-emulator/internal/validation"
)

// JSONWebKeyResponse is the public half of a key. Private material never leaves the vault.
type JSONWebKeyResponse struct {
	Kid    string   `json:"kid"`
	Kty    string   `json:"kty"`
	KeyOps []string `json:"key_ops"`
	N      string   `json:"n"`
	E      string   `json:"e"`
}

// KeyBundleResponse represents a key version in API responses.
type KeyBundleResponse struct {
	Key        JSONWebKeyResponse           `json:"key"`
	Attributes entityDto.AttributesResponse `json:"attributes"`
	Tags       map[string]string            `json:"tags,omitempty"`
	Managed    bool                         `json:"managed,omitempty"`
}

// DeletedKeyBundleResponse is a key bundle with its recovery metadata.
type DeletedKeyBundleResponse struct {
	KeyBundleResponse
	entityDto.DeletedFields
}

// KeyItemResponse is one entry of a key listing.
type KeyItemResponse struct {
	Kid        string                       `json:"kid"`
	Attributes entityDto.AttributesResponse `json:"attributes"`
	Tags       map[string]string            `json:"tags,omitempty"`
	Managed    bool                         `json:"managed,omitempty"`
}

// DeletedKeyItemResponse is one entry of a deleted key listing.
type DeletedKeyItemResponse struct {
	KeyItemResponse
	entityDto.DeletedFields
}

// KeyOperationResponse is the result of encrypt, decrypt, sign, wrapkey and unwrapkey.
type KeyOperationResponse struct {
	Kid   string `json:"kid"`
	Value string `json:"value"`
}

// VerifyResponse is the result of verify.
type VerifyResponse struct {
	Value bool `json:"value"`
}

// RandomBytesResponse carries random bytes.
type RandomBytesResponse struct {
	Value string `json:"value"`
}

func keyOps(ops []keysDomain.KeyOperation) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, string(op))
	}
	return out
}

// MapKeyToResponse converts a key version to its bundle.
func MapKeyToResponse(record *domain.Record[keysDomain.Key]) KeyBundleResponse {
	jwk := record.Payload.JSONWebKey
	return KeyBundleResponse{
		Key: JSONWebKeyResponse{
			Kid:    record.ID,
			Kty:    string(jwk.Kty),
			KeyOps: keyOps(jwk.KeyOps),
			N:      customValidation.EncodeBase64URL(jwk.N),
			E:      customValidation.EncodeBase64URL(jwk.E),
		},
		Attributes: entityDto.MapAttributes(record.Attributes),
		Tags:       record.Tags,
		Managed:    record.Payload.Managed,
	}
}

// MapDeletedKeyToResponse converts a deleted key to its bundle.
func MapDeletedKeyToResponse(deleted *domain.DeletedRecord[keysDomain.Key]) DeletedKeyBundleResponse {
	return DeletedKeyBundleResponse{
		KeyBundleResponse: MapKeyToResponse(deleted.Record),
		DeletedFields:     entityDto.MapDeletedFields(deleted),
	}
}

// MapKeyToItem converts a key version to a list entry.
func MapKeyToItem(record *domain.Record[keysDomain.Key]) KeyItemResponse {
	return KeyItemResponse{
		Kid:        record.ID,
		Attributes: entityDto.MapAttributes(record.Attributes),
		Tags:       record.Tags,
		Managed:    record.Payload.Managed,
	}
}

// MapKeysToItems converts a page of keys to list entries.
func MapKeysToItems(records []*domain.Record[keysDomain.Key]) []KeyItemResponse {
	out := make([]KeyItemResponse, 0, len(records))
	for _, r := range records {
		out = append(out, MapKeyToItem(r))
	}
	return out
}

// MapDeletedKeysToItems converts a page of deleted keys to list entries.
func MapDeletedKeysToItems(
	ids domain.IDBuilder,
	records []*domain.Record[keysDomain.Key],
) []DeletedKeyItemResponse {
	out := make([]DeletedKeyItemResponse, 0, len(records))
	for _, r := range records {
		out = append(out, DeletedKeyItemResponse{
			KeyItemResponse: MapKeyToItem(r),
			DeletedFields:   entityDto.DeletedFieldsFromRecord(ids, domain.KindKey, r),
		})
	}
	return out
}

// MapOperationResult converts a key operation result.
func MapOperationResult(result *keysUsecase.OperationResult) KeyOperationResponse {
	return KeyOperationResponse{
		Kid:   result.KeyID,
		Value: customValidation.EncodeBase64URL(result.Result),
	}
}
