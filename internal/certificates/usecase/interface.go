// Package usecase implements certificate issuance and management, issuers and the
// vault contact list.
//
// A certificate version is committed as a triple: a managed key version, a managed
// secret version and the certificate version, all sharing one version token. A
// failure part way removes what was already written, so readers never see a
// certificate without its key and secret.
package usecase

import (
	"context"
	"crypto/rsa"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	"github.com/allisson/keyvault-emulator/internal/certificates/service"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
)

// EntityStore is the versioned store surface used for certificates and their backing
// keys and secrets.
type EntityStore[T any] interface {
	CreateVersion(
		ctx context.Context,
		name, version string,
		payload T,
		attrs *domain.AttributesPatch,
		tags domain.Tags,
		guards ...domain.Guard[T],
	) (*domain.Record[T], error)
	Get(ctx context.Context, name string) (*domain.Record[T], error)
	GetVersion(ctx context.Context, name, version string) (*domain.Record[T], error)
	Update(ctx context.Context, name, version string, patch domain.Patch) (*domain.Record[T], error)
	ListCurrent(ctx context.Context, cursor string, take int) (*domain.Page[T], error)
	ListDeleted(ctx context.Context, cursor string, take int) (*domain.Page[T], error)
	ListVersions(ctx context.Context, name, cursor string, take int) (*domain.Page[T], error)
	Delete(ctx context.Context, name string) (*domain.DeletedRecord[T], error)
	GetDeleted(ctx context.Context, name string) (*domain.DeletedRecord[T], error)
	Recover(ctx context.Context, name string) (*domain.Record[T], error)
	Purge(ctx context.Context, name string) error
	Remove(ctx context.Context, name, version string) error
	Versions(ctx context.Context, name string) ([]*domain.Record[T], error)
	Restore(ctx context.Context, name string, records []*domain.Record[T]) (*domain.Record[T], error)
}

// DocumentRepository stores single-version documents by name.
type DocumentRepository[T any] interface {
	Get(ctx context.Context, name string) (*T, error)
	Put(ctx context.Context, name string, doc *T) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]*T, error)
}

// IssuanceEngine synthesizes, merges, exports and parses certificate material.
type IssuanceEngine interface {
	Issue(ctx context.Context, policy certificatesDomain.Policy) (*service.Issued, error)
	Merge(priv *rsa.PrivateKey, x5c [][]byte) (*service.Issued, error)
	Export(issued *service.Issued, contentType string) (string, error)
	Parse(value, password string) (*service.Issued, string, error)
}

// Envelope seals and opens backup blobs.
type Envelope interface {
	Seal(v any) (string, error)
	Open(token string, v any) error
}

// CreateCertificateInput describes a certificate to issue. A nil policy uses the
// stored policy of the name, or the default policy for a new name.
type CreateCertificateInput struct {
	Policy     *certificatesDomain.PolicyPatch
	Attributes *domain.AttributesPatch
	Tags       domain.Tags
}

// ImportCertificateInput describes externally issued certificate material.
type ImportCertificateInput struct {
	// Value is PEM text or base64 PKCS#12.
	Value      string
	Password   string
	Policy     *certificatesDomain.PolicyPatch
	Attributes *domain.AttributesPatch
	Tags       domain.Tags
}

// MergeCertificateInput carries the signed chain for a pending certificate.
type MergeCertificateInput struct {
	// X5C holds DER certificates, leaf first.
	X5C        [][]byte
	Attributes *domain.AttributesPatch
	Tags       domain.Tags
}

// IssuerInput describes an issuer to create or replace.
type IssuerInput struct {
	Provider            string
	Credentials         *certificatesDomain.IssuerCredentials
	OrganizationDetails *certificatesDomain.OrganizationDetails
	Enabled             *bool
}

// CertificateUseCase defines certificate business logic.
type CertificateUseCase interface {
	Create(ctx context.Context, name string, input CreateCertificateInput) (*certificatesDomain.Operation, error)
	Import(
		ctx context.Context,
		name string,
		input ImportCertificateInput,
	) (*domain.Record[certificatesDomain.Certificate], error)
	Merge(
		ctx context.Context,
		name string,
		input MergeCertificateInput,
	) (*domain.Record[certificatesDomain.Certificate], error)
	Get(ctx context.Context, name, version string) (*domain.Record[certificatesDomain.Certificate], error)
	Update(
		ctx context.Context,
		name, version string,
		patch domain.Patch,
	) (*domain.Record[certificatesDomain.Certificate], error)
	List(ctx context.Context, cursor string, take int) (*domain.Page[certificatesDomain.Certificate], error)
	ListVersions(
		ctx context.Context,
		name, cursor string,
		take int,
	) (*domain.Page[certificatesDomain.Certificate], error)
	Delete(ctx context.Context, name string) (*domain.DeletedRecord[certificatesDomain.Certificate], error)
	GetDeleted(ctx context.Context, name string) (*domain.DeletedRecord[certificatesDomain.Certificate], error)
	ListDeleted(ctx context.Context, cursor string, take int) (*domain.Page[certificatesDomain.Certificate], error)
	Recover(ctx context.Context, name string) (*domain.Record[certificatesDomain.Certificate], error)
	Purge(ctx context.Context, name string) error
	Backup(ctx context.Context, name string) (string, error)
	Restore(ctx context.Context, blob string) (*domain.Record[certificatesDomain.Certificate], error)

	GetPolicy(ctx context.Context, name string) (*certificatesDomain.Policy, error)
	UpdatePolicy(
		ctx context.Context,
		name string,
		patch certificatesDomain.PolicyPatch,
	) (*certificatesDomain.Policy, error)
	BindIssuer(ctx context.Context, name, issuerName string) (*certificatesDomain.Policy, error)

	GetOperation(ctx context.Context, name string) (*certificatesDomain.Operation, error)
	DeleteOperation(ctx context.Context, name string) (*certificatesDomain.Operation, error)
}

// IssuerUseCase defines certificate issuer management.
type IssuerUseCase interface {
	Set(ctx context.Context, name string, input IssuerInput) (*certificatesDomain.Issuer, error)
	Get(ctx context.Context, name string) (*certificatesDomain.Issuer, error)
	Update(
		ctx context.Context,
		name string,
		patch certificatesDomain.IssuerPatch,
	) (*certificatesDomain.Issuer, error)
	Delete(ctx context.Context, name string) (*certificatesDomain.Issuer, error)
	List(ctx context.Context) ([]*certificatesDomain.Issuer, error)
}

// ContactUseCase defines management of the vault contact list.
type ContactUseCase interface {
	Set(ctx context.Context, contacts []certificatesDomain.Contact) (*certificatesDomain.Contacts, error)
	Get(ctx context.Context) (*certificatesDomain.Contacts, error)
	Delete(ctx context.Context) (*certificatesDomain.Contacts, error)
}
