package usecase

import (
	"context"
	"fmt"
	"slices"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

// contactsDocument is the document name of the vault contact list.
const contactsDocument = "contacts"

// contactUseCase implements the ContactUseCase interface.
type contactUseCase struct {
	contacts DocumentRepository[certificatesDomain.Contacts]
	ids      domain.IDBuilder
}

// Set replaces the contact list. Setting the list it already holds returns the stored
// record unchanged.
func (c *contactUseCase) Set(
	ctx context.Context,
	contacts []certificatesDomain.Contact,
) (*certificatesDomain.Contacts, error) {
	next := &certificatesDomain.Contacts{
		ID:       fmt.Sprintf("%s/%s/contacts", c.ids.BaseURI, domain.KindCertificate),
		Contacts: slices.Clone(contacts),
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	current, err := c.contacts.Get(ctx, contactsDocument)
	switch {
	case err == nil && current.Equal(contacts):
		return current, nil
	case err != nil && !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	if err := c.contacts.Put(ctx, contactsDocument, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Get returns the contact list.
func (c *contactUseCase) Get(ctx context.Context) (*certificatesDomain.Contacts, error) {
	contacts, err := c.contacts.Get(ctx, contactsDocument)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, certificatesDomain.ErrContactsNotFound
		}
		return nil, err
	}
	return contacts, nil
}

// Delete removes the contact list and returns it.
func (c *contactUseCase) Delete(ctx context.Context) (*certificatesDomain.Contacts, error) {
	contacts, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.contacts.Delete(ctx, contactsDocument); err != nil {
		return nil, err
	}
	return contacts, nil
}

// NewContactUseCase creates a contact list use case.
func NewContactUseCase(contacts DocumentRepository[certificatesDomain.Contacts], ids domain.IDBuilder) ContactUseCase {
	return &contactUseCase{contacts: contacts, ids: ids}
}
