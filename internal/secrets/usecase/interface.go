// Package usecase implements secret management on top of the versioned entity store.
package usecase

import (
	"context"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
)

// SecretStore is the versioned store holding secret versions.
type SecretStore interface {
	Create(
		ctx context.Context,
		name string,
		payload secretsDomain.Secret,
		attrs *domain.AttributesPatch,
		tags domain.Tags,
		guards ...domain.Guard[secretsDomain.Secret],
	) (*domain.Record[secretsDomain.Secret], error)
	Get(ctx context.Context, name string) (*domain.Record[secretsDomain.Secret], error)
	GetVersion(ctx context.Context, name, version string) (*domain.Record[secretsDomain.Secret], error)
	Update(
		ctx context.Context,
		name, version string,
		patch domain.Patch,
	) (*domain.Record[secretsDomain.Secret], error)
	ListCurrent(ctx context.Context, cursor string, take int) (*domain.Page[secretsDomain.Secret], error)
	ListDeleted(ctx context.Context, cursor string, take int) (*domain.Page[secretsDomain.Secret], error)
	ListVersions(ctx context.Context, name, cursor string, take int) (*domain.Page[secretsDomain.Secret], error)
	Delete(ctx context.Context, name string) (*domain.DeletedRecord[secretsDomain.Secret], error)
	GetDeleted(ctx context.Context, name string) (*domain.DeletedRecord[secretsDomain.Secret], error)
	Recover(ctx context.Context, name string) (*domain.Record[secretsDomain.Secret], error)
	Purge(ctx context.Context, name string) error
	Versions(ctx context.Context, name string) ([]*domain.Record[secretsDomain.Secret], error)
	Restore(
		ctx context.Context,
		name string,
		records []*domain.Record[secretsDomain.Secret],
	) (*domain.Record[secretsDomain.Secret], error)
}

// Envelope seals and opens backup blobs.
type Envelope interface {
	Seal(v any) (string, error)
	Open(token string, v any) error
}

// SetSecretInput describes a new secret version.
type SetSecretInput struct {
	Value       string
	ContentType string
	Attributes  *domain.AttributesPatch
	Tags        domain.Tags
}

// SecretUseCase defines secret management business logic.
type SecretUseCase interface {
	// Set stores a new version of name. It creates the name when absent.
	Set(ctx context.Context, name string, input SetSecretInput) (*domain.Record[secretsDomain.Secret], error)

	// Get returns a version of name, or the current one when version is empty.
	Get(ctx context.Context, name, version string) (*domain.Record[secretsDomain.Secret], error)

	// Update changes attributes and tags of a version.
	Update(
		ctx context.Context,
		name, version string,
		patch domain.Patch,
	) (*domain.Record[secretsDomain.Secret], error)

	List(ctx context.Context, cursor string, take int) (*domain.Page[secretsDomain.Secret], error)
	ListVersions(ctx context.Context, name, cursor string, take int) (*domain.Page[secretsDomain.Secret], error)

	Delete(ctx context.Context, name string) (*domain.DeletedRecord[secretsDomain.Secret], error)
	GetDeleted(ctx context.Context, name string) (*domain.DeletedRecord[secretsDomain.Secret], error)
	ListDeleted(ctx context.Context, cursor string, take int) (*domain.Page[secretsDomain.Secret], error)
	Recover(ctx context.Context, name string) (*domain.Record[secretsDomain.Secret], error)
	Purge(ctx context.Context, name string) error

	Backup(ctx context.Context, name string) (string, error)
	Restore(ctx context.Context, blob string) (*domain.Record[secretsDomain.Secret], error)
}
