// Package domain defines the core domain models and types for secret management.
// Every write creates a new immutable version; only attributes and tags of a version
// change afterwards.
package domain

// Content types set on certificate-backed secrets.
const (
	ContentTypePKCS12 = "application/x-pkcs12"
	ContentTypePEM    = "application/x-pem-file"
)

// Secret is the payload of a secret version.
type Secret struct {
	// Value is the secret value as supplied by the caller.
	Value string `json:"value"`
	// ContentType is an opaque hint describing Value.
	ContentType string `json:"contentType,omitempty"`
	// Managed is set when the secret backs a certificate.
	Managed bool `json:"managed,omitempty"`
	// KeyID identifies the backing key version of a certificate-backed secret.
	KeyID string `json:"kid,omitempty"`
}
