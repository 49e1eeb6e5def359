// Package dto provides the request and response shapes shared by the secret, key and
// certificate handlers.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	customValidation "github.com/allisson/keyvault-emulator/internal/validation"
)

// AttributesRequest carries the caller-settable attributes of an entity version.
type AttributesRequest struct {
	Enabled   *bool  `json:"enabled,omitempty"`
	NotBefore *int64 `json:"nbf,omitempty"`
	Expires   *int64 `json:"exp,omitempty"`
}

// Validate rejects an activation window that ends before it starts.
func (a *AttributesRequest) Validate() error {
	if a == nil {
		return nil
	}
	return validation.ValidateStruct(a,
		validation.Field(&a.Expires, validation.By(func(interface{}) error {
			if a.NotBefore != nil && a.Expires != nil && *a.Expires < *a.NotBefore {
				return validation.NewError("validation_expires_before_nbf", "must not be before nbf")
			}
			return nil
		})),
	)
}

// ToPatch converts the request into a domain patch. A nil request yields nil.
func (a *AttributesRequest) ToPatch() *domain.AttributesPatch {
	if a == nil {
		return nil
	}
	return &domain.AttributesPatch{
		Enabled:   a.Enabled,
		NotBefore: a.NotBefore,
		Expires:   a.Expires,
	}
}

// AttributesResponse represents entity attributes in API responses.
type AttributesResponse struct {
	Enabled         bool   `json:"enabled"`
	NotBefore       *int64 `json:"nbf,omitempty"`
	Expires         *int64 `json:"exp,omitempty"`
	Created         int64  `json:"created"`
	Updated         int64  `json:"updated"`
	RecoveryLevel   string `json:"recoveryLevel"`
	RecoverableDays int    `json:"recoverableDays"`
}

// MapAttributes converts domain attributes to their API shape.
func MapAttributes(a domain.Attributes) AttributesResponse {
	return AttributesResponse{
		Enabled:         a.Enabled,
		NotBefore:       a.NotBefore,
		Expires:         a.Expires,
		Created:         a.Created,
		Updated:         a.Updated,
		RecoveryLevel:   a.RecoveryLevel,
		RecoverableDays: a.RecoverableDays,
	}
}

// UpdateRequest is the PATCH body shared by secrets, keys and certificates.
type UpdateRequest struct {
	Attributes *AttributesRequest `json:"attributes,omitempty"`
	Tags       map[string]string  `json:"tags,omitempty"`
}

// Validate checks the update request.
func (r *UpdateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Attributes),
	)
}

// ToPatch converts the request into a domain patch.
func (r *UpdateRequest) ToPatch() domain.Patch {
	return domain.Patch{
		Attributes: r.Attributes.ToPatch(),
		Tags:       r.Tags,
	}
}

// DeletedFields are added to an entity bundle once it is deleted.
type DeletedFields struct {
	RecoveryID         string `json:"recoveryId"`
	DeletedDate        int64  `json:"deletedDate"`
	ScheduledPurgeDate int64  `json:"scheduledPurgeDate"`
}

// MapDeletedFields extracts the recovery metadata of a deleted record.
func MapDeletedFields[T any](d *domain.DeletedRecord[T]) DeletedFields {
	return DeletedFields{
		RecoveryID:         d.RecoveryID,
		DeletedDate:        d.DeletedDate,
		ScheduledPurgeDate: d.ScheduledPurgeDate,
	}
}

// DeletedFieldsFromRecord derives the recovery metadata of a record listed as deleted.
func DeletedFieldsFromRecord[T any](ids domain.IDBuilder, kind domain.Kind, r *domain.Record[T]) DeletedFields {
	return DeletedFields{
		RecoveryID:         ids.RecoveryID(kind, r.Name),
		DeletedDate:        r.DeletedDate,
		ScheduledPurgeDate: r.ScheduledPurgeDate,
	}
}

// BackupResponse carries an opaque backup blob.
type BackupResponse struct {
	Value string `json:"value"`
}

// RestoreRequest carries a backup blob to restore.
type RestoreRequest struct {
	Value string `json:"value"`
}

// Validate checks the restore request.
func (r *RestoreRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value, validation.Required, customValidation.NotBlank),
	)
}
