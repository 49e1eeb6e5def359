package usecase

import (
	"context"
	"fmt"
	"time"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	certificatesService "github.com/allisson/keyvault-emulator/internal/certificates/service"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

// issuerUseCase implements the IssuerUseCase interface.
type issuerUseCase struct {
	issuers     DocumentRepository[certificatesDomain.Issuer]
	credentials *certificatesService.CredentialService
	ids         domain.IDBuilder
	clock       func() time.Time
}

// Set creates or replaces the issuer name. A deleted issuer of the same name is replaced.
func (i *issuerUseCase) Set(
	ctx context.Context,
	name string,
	input IssuerInput,
) (*certificatesDomain.Issuer, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	credentials, err := i.credentials.Protect(input.Credentials)
	if err != nil {
		return nil, err
	}

	now := i.clock().Unix()
	issuer := &certificatesDomain.Issuer{
		ID:                  i.issuerID(name),
		Name:                name,
		Provider:            input.Provider,
		Credentials:         credentials,
		OrganizationDetails: input.OrganizationDetails,
		Attributes:          certificatesDomain.IssuerAttributes{Enabled: true, Created: now, Updated: now},
	}
	if input.Enabled != nil {
		issuer.Attributes.Enabled = *input.Enabled
	}
	if err := issuer.Validate(); err != nil {
		return nil, err
	}

	if err := i.issuers.Put(ctx, name, issuer); err != nil {
		return nil, err
	}
	return issuer, nil
}

// Get returns an issuer that is not deleted.
func (i *issuerUseCase) Get(ctx context.Context, name string) (*certificatesDomain.Issuer, error) {
	issuer, err := i.issuers.Get(ctx, name)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, certificatesDomain.ErrIssuerNotFound
		}
		return nil, err
	}
	if issuer.Deleted {
		return nil, certificatesDomain.ErrIssuerNotFound
	}
	return issuer, nil
}

// Update changes the set fields of an issuer.
func (i *issuerUseCase) Update(
	ctx context.Context,
	name string,
	patch certificatesDomain.IssuerPatch,
) (*certificatesDomain.Issuer, error) {
	issuer, err := i.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if patch.Credentials != nil {
		if patch.Credentials, err = i.credentials.Protect(patch.Credentials); err != nil {
			return nil, err
		}
	}

	issuer.Apply(patch, i.clock())
	if err := issuer.Validate(); err != nil {
		return nil, err
	}
	if err := i.issuers.Put(ctx, name, issuer); err != nil {
		return nil, err
	}
	return issuer, nil
}

// Delete flags an issuer as deleted and returns it.
func (i *issuerUseCase) Delete(ctx context.Context, name string) (*certificatesDomain.Issuer, error) {
	issuer, err := i.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	issuer.Deleted = true
	if err := i.issuers.Put(ctx, name, issuer); err != nil {
		return nil, err
	}
	return issuer, nil
}

// List returns every issuer that is not deleted, ordered by name.
func (i *issuerUseCase) List(ctx context.Context) ([]*certificatesDomain.Issuer, error) {
	docs, err := i.issuers.List(ctx)
	if err != nil {
		return nil, err
	}

	issuers := make([]*certificatesDomain.Issuer, 0, len(docs))
	for _, issuer := range docs {
		if !issuer.Deleted {
			issuers = append(issuers, issuer)
		}
	}
	return issuers, nil
}

func (i *issuerUseCase) issuerID(name string) string {
	return fmt.Sprintf("%s/%s/issuers/%s", i.ids.BaseURI, domain.KindCertificate, name)
}

// NewIssuerUseCase creates an issuer use case. Issuer passwords are stored hashed.
func NewIssuerUseCase(
	issuers DocumentRepository[certificatesDomain.Issuer],
	credentials *certificatesService.CredentialService,
	ids domain.IDBuilder,
) IssuerUseCase {
	return &issuerUseCase{
		issuers:     issuers,
		credentials: credentials,
		ids:         ids,
		clock:       time.Now,
	}
}
