package app

import (
	"fmt"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	certificatesHTTP "github.com/allisson/keyvault-emulator/internal/certificates/http"
	certificatesService "github.com/allisson/keyvault-emulator/internal/certificates/service"
	certificatesUseCase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	"github.com/allisson/keyvault-emulator/internal/entity/store"
)

// Document kinds stored alongside certificate versions.
const (
	documentKindPolicy    = "certificate_policies"
	documentKindOperation = "certificate_operations"
	documentKindIssuer    = "certificate_issuers"
	documentKindContacts  = "certificate_contacts"
)

// CertificateStore returns the versioned store for certificates.
func (c *Container) CertificateStore() (*store.Store[certificatesDomain.Certificate], error) {
	var err error
	c.certificateStoreInit.Do(func() {
		c.certificateStore, err = newEntityStore[certificatesDomain.Certificate](c, domain.KindCertificate)
		if err != nil {
			c.initErrors["certificateStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["certificateStore"]; exists {
		return nil, storedErr
	}
	return c.certificateStore, nil
}

// IssuerRepository returns the issuer documents shared by policies and the issuers API.
func (c *Container) IssuerRepository() (certificatesUseCase.DocumentRepository[certificatesDomain.Issuer], error) {
	var err error
	c.issuerRepositoryInit.Do(func() {
		c.issuerRepository, err = newDocumentRepository[certificatesDomain.Issuer](c, documentKindIssuer)
		if err != nil {
			c.initErrors["issuerRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["issuerRepository"]; exists {
		return nil, storedErr
	}
	return c.issuerRepository, nil
}

// CertificateUseCase returns the certificate use case.
func (c *Container) CertificateUseCase() (certificatesUseCase.CertificateUseCase, error) {
	var err error
	c.certificateUseCaseInit.Do(func() {
		c.certificateUseCase, err = c.initCertificateUseCase()
		if err != nil {
			c.initErrors["certificateUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["certificateUseCase"]; exists {
		return nil, storedErr
	}
	return c.certificateUseCase, nil
}

// IssuerUseCase returns the certificate issuer use case.
func (c *Container) IssuerUseCase() (certificatesUseCase.IssuerUseCase, error) {
	var err error
	c.issuerUseCaseInit.Do(func() {
		c.issuerUseCase, err = c.initIssuerUseCase()
		if err != nil {
			c.initErrors["issuerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["issuerUseCase"]; exists {
		return nil, storedErr
	}
	return c.issuerUseCase, nil
}

// ContactUseCase returns the certificate contacts use case.
func (c *Container) ContactUseCase() (certificatesUseCase.ContactUseCase, error) {
	var err error
	c.contactUseCaseInit.Do(func() {
		c.contactUseCase, err = c.initContactUseCase()
		if err != nil {
			c.initErrors["contactUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["contactUseCase"]; exists {
		return nil, storedErr
	}
	return c.contactUseCase, nil
}

// CertificateHandler returns the HTTP handler for certificate operations.
func (c *Container) CertificateHandler() (*certificatesHTTP.CertificateHandler, error) {
	var err error
	c.certificateHandlerInit.Do(func() {
		c.certificateHandler, err = c.initCertificateHandler()
		if err != nil {
			c.initErrors["certificateHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["certificateHandler"]; exists {
		return nil, storedErr
	}
	return c.certificateHandler, nil
}

// IssuerHandler returns the HTTP handler for certificate issuers.
func (c *Container) IssuerHandler() (*certificatesHTTP.IssuerHandler, error) {
	var err error
	c.issuerHandlerInit.Do(func() {
		var issuerUseCase certificatesUseCase.IssuerUseCase
		issuerUseCase, err = c.IssuerUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get issuer use case for issuer handler: %w", err)
			c.initErrors["issuerHandler"] = err
			return
		}
		c.issuerHandler = certificatesHTTP.NewIssuerHandler(issuerUseCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["issuerHandler"]; exists {
		return nil, storedErr
	}
	return c.issuerHandler, nil
}

// ContactHandler returns the HTTP handler for certificate contacts.
func (c *Container) ContactHandler() (*certificatesHTTP.ContactHandler, error) {
	var err error
	c.contactHandlerInit.Do(func() {
		var contactUseCase certificatesUseCase.ContactUseCase
		contactUseCase, err = c.ContactUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get contact use case for contact handler: %w", err)
			c.initErrors["contactHandler"] = err
			return
		}
		c.contactHandler = certificatesHTTP.NewContactHandler(contactUseCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["contactHandler"]; exists {
		return nil, storedErr
	}
	return c.contactHandler, nil
}

// initCertificateUseCase creates the certificate use case with all its dependencies.
// Certificates share the key and secret stores so their backing entities are visible
// through the keys and secrets APIs.
func (c *Container) initCertificateUseCase() (certificatesUseCase.CertificateUseCase, error) {
	certificateStore, err := c.CertificateStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate store for certificate use case: %w", err)
	}

	keyStore, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for certificate use case: %w", err)
	}

	secretStore, err := c.SecretStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret store for certificate use case: %w", err)
	}

	policies, err := newDocumentRepository[certificatesDomain.Policy](c, documentKindPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy repository for certificate use case: %w", err)
	}

	operations, err := newDocumentRepository[certificatesDomain.Operation](c, documentKindOperation)
	if err != nil {
		return nil, fmt.Errorf("failed to get operation repository for certificate use case: %w", err)
	}

	issuers, err := c.IssuerRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer repository for certificate use case: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope for certificate use case: %w", err)
	}

	baseUseCase := certificatesUseCase.NewCertificateUseCase(
		certificateStore,
		keyStore,
		secretStore,
		policies,
		operations,
		issuers,
		certificatesService.NewIssuanceService(c.CryptoService()),
		envelope,
		c.IDBuilder(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for certificate use case: %w", err)
		}
		return certificatesUseCase.NewCertificateUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initIssuerUseCase creates the issuer use case.
func (c *Container) initIssuerUseCase() (certificatesUseCase.IssuerUseCase, error) {
	issuers, err := c.IssuerRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer repository for issuer use case: %w", err)
	}

	return certificatesUseCase.NewIssuerUseCase(issuers, certificatesService.NewCredentialService(), c.IDBuilder()), nil
}

// initContactUseCase creates the contacts use case.
func (c *Container) initContactUseCase() (certificatesUseCase.ContactUseCase, error) {
	contacts, err := newDocumentRepository[certificatesDomain.Contacts](c, documentKindContacts)
	if err != nil {
		return nil, fmt.Errorf("failed to get contacts repository for contact use case: %w", err)
	}

	return certificatesUseCase.NewContactUseCase(contacts, c.IDBuilder()), nil
}

// initCertificateHandler creates the certificate HTTP handler with all its dependencies.
func (c *Container) initCertificateHandler() (*certificatesHTTP.CertificateHandler, error) {
	certificateUseCase, err := c.CertificateUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate use case for certificate handler: %w", err)
	}

	return certificatesHTTP.NewCertificateHandler(certificateUseCase, c.IDBuilder(), c.Logger()), nil
}
