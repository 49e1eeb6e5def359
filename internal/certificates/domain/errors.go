package domain

import (
	"github.com/allisson/keyvault-emulator/internal/errors"
)

// Certificate-specific error definitions.
var (
	// ErrInvalidPolicy indicates a policy that cannot be used to issue a certificate.
	ErrInvalidPolicy = errors.Wrap(errors.ErrInvalidInput, "invalid certificate policy")

	// ErrInvalidSubject indicates a subject that is not a comma separated list of known RDNs.
	ErrInvalidSubject = errors.Wrap(errors.ErrInvalidInput, "invalid certificate subject")

	// ErrUnsupportedContentType indicates a secret content type other than PKCS#12 or PEM.
	ErrUnsupportedContentType = errors.Wrap(errors.ErrInvalidInput, "unsupported certificate content type")

	// ErrUnsupportedKeyType indicates a policy or imported key that is not RSA.
	ErrUnsupportedKeyType = errors.Wrap(errors.ErrNotImplemented, "unsupported certificate key type")

	// ErrInvalidCertificate indicates imported or merged bytes that do not parse as certificates.
	ErrInvalidCertificate = errors.Wrap(errors.ErrInvalidInput, "invalid certificate data")

	// ErrPrivateKeyRequired indicates an import without a private key.
	ErrPrivateKeyRequired = errors.Wrap(errors.ErrInvalidInput, "certificate import requires a private key")

	// ErrNoPendingCertificate indicates a merge against a certificate without a pending request.
	ErrNoPendingCertificate = errors.Wrap(errors.ErrInvalidOperation, "certificate has no pending signing request")

	// ErrMergeKeyMismatch indicates a merged certificate whose public key differs from the pending key.
	ErrMergeKeyMismatch = errors.Wrap(errors.ErrInvalidInput, "merged certificate does not match the pending key")

	// ErrPolicyNotFound indicates a certificate name without a policy.
	ErrPolicyNotFound = errors.Wrap(errors.ErrNotFound, "certificate policy not found")

	// ErrOperationNotFound indicates a certificate name without a recorded operation.
	ErrOperationNotFound = errors.Wrap(errors.ErrNotFound, "certificate operation not found")

	// ErrIssuerNotFound indicates a missing or deleted issuer.
	ErrIssuerNotFound = errors.Wrap(errors.ErrNotFound, "certificate issuer not found")

	// ErrInvalidIssuer indicates an issuer without a provider.
	ErrInvalidIssuer = errors.Wrap(errors.ErrInvalidInput, "issuer provider is required")

	// ErrContactsNotFound indicates the vault has no contacts.
	ErrContactsNotFound = errors.Wrap(errors.ErrNotFound, "certificate contacts not found")

	// ErrInvalidContacts indicates a contact list that is empty or has a contact without any field.
	ErrInvalidContacts = errors.Wrap(errors.ErrInvalidInput, "invalid certificate contacts")
)

// ErrBackingNameInUse indicates a key or secret that shares the certificate name but is
// not managed by it.
var ErrBackingNameInUse = errors.Wrap(errors.ErrConflict, "name is used by a key or secret outside the certificate")
