package dto

import (
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	entityDto "github.com/allisson/keyvault-emulator/internal/entity/http/dto"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
)

// SecretBundleResponse represents a secret version in API responses. It carries the value.
type SecretBundleResponse struct {
	Value       string                       `json:"value"`
	ID          string                       `json:"id"`
	ContentType string                       `json:"contentType,omitempty"`
	Attributes  entityDto.AttributesResponse `json:"attributes"`
	Tags        map[string]string            `json:"tags,omitempty"`
	Kid         string                       `json:"kid,omitempty"`
	Managed     bool                         `json:"managed,omitempty"`
}

// DeletedSecretBundleResponse is a secret bundle with its recovery metadata.
type DeletedSecretBundleResponse struct {
	SecretBundleResponse
	entityDto.DeletedFields
}

// SecretItemResponse is one entry of a secret listing. Values are never listed.
type SecretItemResponse struct {
	ID          string                       `json:"id"`
	ContentType string                       `json:"contentType,omitempty"`
	Attributes  entityDto.AttributesResponse `json:"attributes"`
	Tags        map[string]string            `json:"tags,omitempty"`
	Managed     bool                         `json:"managed,omitempty"`
}

// DeletedSecretItemResponse is one entry of a deleted secret listing.
type DeletedSecretItemResponse struct {
	SecretItemResponse
	entityDto.DeletedFields
}

// MapSecretToResponse converts a secret version to its bundle.
func MapSecretToResponse(record *domain.Record[secretsDomain.Secret]) SecretBundleResponse {
	return SecretBundleResponse{
		Value:       record.Payload.Value,
		ID:          record.ID,
		ContentType: record.Payload.ContentType,
		Attributes:  entityDto.MapAttributes(record.Attributes),
		Tags:        record.Tags,
		Kid:         record.Payload.KeyID,
		Managed:     record.Payload.Managed,
	}
}

// MapDeletedSecretToResponse converts a deleted secret to its bundle.
func MapDeletedSecretToResponse(deleted *domain.DeletedRecord[secretsDomain.Secret]) DeletedSecretBundleResponse {
	return DeletedSecretBundleResponse{
		SecretBundleResponse: MapSecretToResponse(deleted.Record),
		DeletedFields:        entityDto.MapDeletedFields(deleted),
	}
}

// MapSecretToItem converts a secret version to a list entry.
func MapSecretToItem(record *domain.Record[secretsDomain.Secret]) SecretItemResponse {
	return SecretItemResponse{
		ID:          record.ID,
		ContentType: record.Payload.ContentType,
		Attributes:  entityDto.MapAttributes(record.Attributes),
		Tags:        record.Tags,
		Managed:     record.Payload.Managed,
	}
}

// MapSecretsToItems converts a page of secrets to list entries.
func MapSecretsToItems(records []*domain.Record[secretsDomain.Secret]) []SecretItemResponse {
	out := make([]SecretItemResponse, 0, len(records))
	for _, r := range records {
		out = append(out, MapSecretToItem(r))
	}
	return out
}

// MapDeletedSecretsToItems converts a page of deleted secrets to list entries.
func MapDeletedSecretsToItems(
	ids domain.IDBuilder,
	records []*domain.Record[secretsDomain.Secret],
) []DeletedSecretItemResponse {
	out := make([]DeletedSecretItemResponse, 0, len(records))
	for _, r := range records {
		out = append(out, DeletedSecretItemResponse{
			SecretItemResponse: MapSecretToItem(r),
			DeletedFields:      entityDto.DeletedFieldsFromRecord(ids, domain.KindSecret, r),
		})
	}
	return out
}
