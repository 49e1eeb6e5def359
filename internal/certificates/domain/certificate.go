package domain

import (
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
)

// Certificate is the stored payload of a certificate version.
type Certificate struct {
	// CER is the DER encoded leaf certificate.
	CER []byte `json:"cer"`
	// X509Thumbprint is the SHA-1 digest of CER.
	X509Thumbprint []byte `json:"x5t"`
	// KeyID and SecretID identify the backing key and secret versions.
	KeyID    string `json:"kid"`
	SecretID string `json:"sid"`
	// PendingCSR holds the DER signing request while the version awaits a merge.
	PendingCSR []byte `json:"csr,omitempty"`
	// Policy is the policy snapshot the version was issued with.
	Policy Policy `json:"policy"`
}

// Pending reports whether the version waits for a signed certificate to be merged.
func (c *Certificate) Pending() bool {
	return len(c.PendingCSR) > 0
}

// StatusCompleted is the only status an operation reaches; issuance is synchronous.
const StatusCompleted = "completed"

// Operation is the issuance request of a certificate. CSR is kept for merge flows.
type Operation struct {
	ID                    string           `json:"id"`
	Issuer                IssuerParameters `json:"issuer"`
	CSR                   []byte           `json:"csr,omitempty"`
	CancellationRequested bool             `json:"cancellation_requested"`
	Status                string           `json:"status"`
	StatusDetails         string           `json:"status_details,omitempty"`
	Target                string           `json:"target"`
	RequestID             string           `json:"request_id"`
}

// Backup is the sealed form of a certificate: every certificate version, the backing
// key and secret versions, and the current policy.
type Backup struct {
	Certificate domain.Backup[Certificate]          `json:"certificate"`
	Key         domain.Backup[keysDomain.Key]       `json:"key"`
	Secret      domain.Backup[secretsDomain.Secret] `json:"secret"`
	Policy      *Policy                             `json:"policy,omitempty"`
}
