package usecase

import (
	"context"
	"slices"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
)

// secretUseCase implements the SecretUseCase interface.
type secretUseCase struct {
	store    SecretStore
	envelope Envelope
}

// Set stores a new version of name. Names backing a certificate are refused.
func (s *secretUseCase) Set(
	ctx context.Context,
	name string,
	input SetSecretInput,
) (*domain.Record[secretsDomain.Secret], error) {
	payload := secretsDomain.Secret{
		Value:       input.Value,
		ContentType: input.ContentType,
	}
	return s.store.Create(ctx, name, payload, input.Attributes, input.Tags, refuseManaged)
}

// Get returns one version of name. An empty version returns the current one.
func (s *secretUseCase) Get(ctx context.Context, name, version string) (*domain.Record[secretsDomain.Secret], error) {
	return s.store.GetVersion(ctx, name, version)
}

// Update changes attributes and tags of a secret version.
func (s *secretUseCase) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[secretsDomain.Secret], error) {
	return s.store.Update(ctx, name, version, patch)
}

// List pages over the current version of every active secret.
func (s *secretUseCase) List(ctx context.Context, cursor string, take int) (*domain.Page[secretsDomain.Secret], error) {
	return s.store.ListCurrent(ctx, cursor, take)
}

// ListVersions pages over every version of name.
func (s *secretUseCase) ListVersions(
	ctx context.Context,
	name, cursor string,
	take int,
) (*domain.Page[secretsDomain.Secret], error) {
	return s.store.ListVersions(ctx, name, cursor, take)
}

// Delete soft-deletes every version of name.
func (s *secretUseCase) Delete(ctx context.Context, name string) (*domain.DeletedRecord[secretsDomain.Secret], error) {
	current, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if current.Payload.Managed {
		return nil, secretsDomain.ErrManagedSecret
	}

	return s.store.Delete(ctx, name)
}

// GetDeleted returns a deleted secret.
func (s *secretUseCase) GetDeleted(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[secretsDomain.Secret], error) {
	return s.store.GetDeleted(ctx, name)
}

// ListDeleted pages over deleted secrets.
func (s *secretUseCase) ListDeleted(
	ctx context.Context,
	cursor string,
	take int,
) (*domain.Page[secretsDomain.Secret], error) {
	return s.store.ListDeleted(ctx, cursor, take)
}

// Recover restores a deleted secret.
func (s *secretUseCase) Recover(ctx context.Context, name string) (*domain.Record[secretsDomain.Secret], error) {
	return s.store.Recover(ctx, name)
}

// Purge permanently removes a deleted secret.
func (s *secretUseCase) Purge(ctx context.Context, name string) error {
	return s.store.Purge(ctx, name)
}

// Backup seals every version of name into an opaque blob. Secrets backing a
// certificate are backed up with the certificate.
func (s *secretUseCase) Backup(ctx context.Context, name string) (string, error) {
	versions, err := s.store.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	if slices.ContainsFunc(versions, isManaged) {
		return "", secretsDomain.ErrManagedSecret
	}

	return s.envelope.Seal(domain.Backup[secretsDomain.Secret]{
		Kind:     domain.KindSecret,
		Name:     name,
		Versions: versions,
	})
}

// Restore opens a backup blob and recreates its secret under fresh version ids.
func (s *secretUseCase) Restore(ctx context.Context, blob string) (*domain.Record[secretsDomain.Secret], error) {
	var backup domain.Backup[secretsDomain.Secret]
	if err := s.envelope.Open(blob, &backup); err != nil {
		return nil, err
	}
	if _, err := backup.Renew(domain.KindSecret); err != nil {
		return nil, err
	}
	if slices.ContainsFunc(backup.Versions, isManaged) {
		return nil, secretsDomain.ErrManagedSecret
	}

	return s.store.Restore(ctx, backup.Name, backup.Versions)
}

func isManaged(record *domain.Record[secretsDomain.Secret]) bool {
	return record.Payload.Managed
}

// refuseManaged keeps plain writes off names whose secret belongs to a certificate.
func refuseManaged(current *domain.Record[secretsDomain.Secret]) error {
	if current != nil && current.Payload.Managed {
		return secretsDomain.ErrManagedSecret
	}
	return nil
}

// NewSecretUseCase creates a secret use case over store.
func NewSecretUseCase(store SecretStore, envelope Envelope) SecretUseCase {
	return &secretUseCase{
		store:    store,
		envelope: envelope,
	}
}
