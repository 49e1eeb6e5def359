// Package domain defines certificates, their issuance policies, issuers and the
// vault-wide contact list.
//
// A certificate version is always backed by a key version and a secret version of the
// same name and version token. The policy lives beside the versions and is snapshotted
// into every certificate version at issuance.
package domain

import (
	"slices"
	"time"

	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
)

// Well-known issuer names.
const (
	// IssuerSelf issues self-signed certificates.
	IssuerSelf = "Self"
	// IssuerUnknown records a signing request that is completed by a merge.
	IssuerUnknown = "Unknown"
)

// Lifetime action types.
const (
	ActionAutoRenew     = "AutoRenew"
	ActionEmailContacts = "EmailContacts"
)

// Policy defaults.
const (
	DefaultSubject        = "CN=DefaultPolicy"
	DefaultValidityMonths = 12
	MaxValidityMonths     = 1200
)

// KeyUsage is a named X.509 key usage bit.
type KeyUsage string

// Key usages.
const (
	KeyUsageDigitalSignature KeyUsage = "digitalSignature"
	KeyUsageNonRepudiation   KeyUsage = "nonRepudiation"
	KeyUsageKeyEncipherment  KeyUsage = "keyEncipherment"
	KeyUsageDataEncipherment KeyUsage = "dataEncipherment"
	KeyUsageKeyAgreement     KeyUsage = "keyAgreement"
	KeyUsageKeyCertSign      KeyUsage = "keyCertSign"
	KeyUsageCRLSign          KeyUsage = "cRLSign"
	KeyUsageEncipherOnly     KeyUsage = "encipherOnly"
	KeyUsageDecipherOnly     KeyUsage = "decipherOnly"
)

// Extended key usage object identifiers used by the default policy.
const (
	EKUServerAuth = "1.3.6.1.5.5.7.3.1"
	EKUClientAuth = "1.3.6.1.5.5.7.3.2"
)

// KeyProperties describe the key generated for a certificate.
type KeyProperties struct {
	Exportable bool               `json:"exportable"`
	KeyType    keysDomain.KeyType `json:"kty"`
	KeySize    int                `json:"key_size"`
	ReuseKey   bool               `json:"reuse_key"`
}

// SecretProperties describe the secret exported for a certificate.
type SecretProperties struct {
	ContentType string `json:"contentType"`
}

// SubjectAlternativeNames lists the SAN entries of a certificate.
type SubjectAlternativeNames struct {
	Emails   []string `json:"emails,omitempty"`
	DNSNames []string `json:"dns_names,omitempty"`
	UPNs     []string `json:"upns,omitempty"`
}

// Empty reports whether no SAN entry is set.
func (s SubjectAlternativeNames) Empty() bool {
	return len(s.Emails) == 0 && len(s.DNSNames) == 0 && len(s.UPNs) == 0
}

// X509Properties describe the certificate itself.
type X509Properties struct {
	Subject                 string                  `json:"subject"`
	SubjectAlternativeNames SubjectAlternativeNames `json:"sans"`
	ExtendedKeyUsage        []string                `json:"ekus,omitempty"`
	KeyUsage                []KeyUsage              `json:"key_usage,omitempty"`
	ValidityMonths          int                     `json:"validity_months"`
}

// IssuerParameters reference the issuer of a certificate.
type IssuerParameters struct {
	Name            string `json:"name"`
	CertificateType string `json:"cty,omitempty"`
}

// LifetimeTrigger fires a lifetime action.
type LifetimeTrigger struct {
	LifetimePercentage int `json:"lifetime_percentage,omitempty"`
	DaysBeforeExpiry   int `json:"days_before_expiry,omitempty"`
}

// LifetimeAction is an action taken during the lifetime of a certificate. Actions are
// recorded and returned but never executed.
type LifetimeAction struct {
	Trigger    LifetimeTrigger `json:"trigger"`
	ActionType string          `json:"action_type"`
}

// PolicyAttributes are the management attributes of a policy.
type PolicyAttributes struct {
	Enabled bool  `json:"enabled"`
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
}

// Policy drives issuance of every version of a certificate.
type Policy struct {
	KeyProperties    KeyProperties    `json:"key_props"`
	SecretProperties SecretProperties `json:"secret_props"`
	X509Properties   X509Properties   `json:"x509_props"`
	Issuer           IssuerParameters `json:"issuer"`
	LifetimeActions  []LifetimeAction `json:"lifetime_actions,omitempty"`
	Attributes       PolicyAttributes `json:"attributes"`
}

// DefaultPolicy returns the policy applied when a certificate is created without one.
func DefaultPolicy(now time.Time) Policy {
	return Policy{
		KeyProperties: KeyProperties{
			Exportable: true,
			KeyType:    keysDomain.KeyTypeRSA,
			KeySize:    keysDomain.DefaultRSAKeySize,
		},
		SecretProperties: SecretProperties{ContentType: secretsDomain.ContentTypePKCS12},
		X509Properties: X509Properties{
			Subject:          DefaultSubject,
			ExtendedKeyUsage: []string{EKUServerAuth, EKUClientAuth},
			KeyUsage:         []KeyUsage{KeyUsageDigitalSignature, KeyUsageKeyEncipherment},
			ValidityMonths:   DefaultValidityMonths,
		},
		Issuer: IssuerParameters{Name: IssuerSelf},
		LifetimeActions: []LifetimeAction{
			{Trigger: LifetimeTrigger{LifetimePercentage: 80}, ActionType: ActionAutoRenew},
		},
		Attributes: PolicyAttributes{Enabled: true, Created: now.Unix(), Updated: now.Unix()},
	}
}

// PolicyPatch replaces policy sections field by field. Nil sections are kept.
type PolicyPatch struct {
	KeyProperties    *KeyPropertiesPatch
	SecretProperties *SecretProperties
	X509Properties   *X509PropertiesPatch
	Issuer           *IssuerParameters
	LifetimeActions  []LifetimeAction
	Enabled          *bool
}

// KeyPropertiesPatch replaces key properties field by field.
type KeyPropertiesPatch struct {
	Exportable *bool
	KeyType    *keysDomain.KeyType
	KeySize    *int
	ReuseKey   *bool
}

// X509PropertiesPatch replaces X.509 properties field by field. A non-nil slice
// replaces the whole list.
type X509PropertiesPatch struct {
	Subject                 *string
	SubjectAlternativeNames *SubjectAlternativeNames
	ExtendedKeyUsage        []string
	KeyUsage                []KeyUsage
	ValidityMonths          *int
}

// Apply copies every set field of patch into the policy. The issuer is only
// replaced when the patch names one.
func (p *Policy) Apply(patch PolicyPatch, now time.Time) {
	if kp := patch.KeyProperties; kp != nil {
		if kp.Exportable != nil {
			p.KeyProperties.Exportable = *kp.Exportable
		}
		if kp.KeyType != nil {
			p.KeyProperties.KeyType = *kp.KeyType
		}
		if kp.KeySize != nil {
			p.KeyProperties.KeySize = *kp.KeySize
		}
		if kp.ReuseKey != nil {
			p.KeyProperties.ReuseKey = *kp.ReuseKey
		}
	}
	if sp := patch.SecretProperties; sp != nil && sp.ContentType != "" {
		p.SecretProperties.ContentType = sp.ContentType
	}
	if xp := patch.X509Properties; xp != nil {
		if xp.Subject != nil {
			p.X509Properties.Subject = *xp.Subject
		}
		if xp.SubjectAlternativeNames != nil {
			p.X509Properties.SubjectAlternativeNames = SubjectAlternativeNames{
				Emails:   slices.Clone(xp.SubjectAlternativeNames.Emails),
				DNSNames: slices.Clone(xp.SubjectAlternativeNames.DNSNames),
				UPNs:     slices.Clone(xp.SubjectAlternativeNames.UPNs),
			}
		}
		if xp.ExtendedKeyUsage != nil {
			p.X509Properties.ExtendedKeyUsage = slices.Clone(xp.ExtendedKeyUsage)
		}
		if xp.KeyUsage != nil {
			p.X509Properties.KeyUsage = slices.Clone(xp.KeyUsage)
		}
		if xp.ValidityMonths != nil {
			p.X509Properties.ValidityMonths = *xp.ValidityMonths
		}
	}
	if patch.Issuer != nil && patch.Issuer.Name != "" {
		p.Issuer = *patch.Issuer
	}
	if patch.LifetimeActions != nil {
		p.LifetimeActions = slices.Clone(patch.LifetimeActions)
	}
	if patch.Enabled != nil {
		p.Attributes.Enabled = *patch.Enabled
	}
	p.Attributes.Updated = now.Unix()
}

// Validate checks that the policy can issue a certificate.
func (p *Policy) Validate() error {
	if !p.KeyProperties.KeyType.IsRSA() {
		return ErrUnsupportedKeyType
	}
	if p.KeyProperties.KeySize != 0 && !slices.Contains(keysDomain.SupportedRSAKeySizes, p.KeyProperties.KeySize) {
		return keysDomain.ErrUnsupportedKeySize
	}
	switch p.SecretProperties.ContentType {
	case secretsDomain.ContentTypePKCS12, secretsDomain.ContentTypePEM:
	default:
		return ErrUnsupportedContentType
	}
	if p.X509Properties.Subject == "" && p.X509Properties.SubjectAlternativeNames.Empty() {
		return ErrInvalidPolicy
	}
	if p.X509Properties.ValidityMonths < 1 || p.X509Properties.ValidityMonths > MaxValidityMonths {
		return ErrInvalidPolicy
	}
	if p.Issuer.Name == "" {
		return ErrInvalidPolicy
	}
	return nil
}

// SelfSigned reports whether the certificate is completed without a merge.
func (p *Policy) SelfSigned() bool {
	return p.Issuer.Name != IssuerUnknown
}
