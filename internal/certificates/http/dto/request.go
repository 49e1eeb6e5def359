// Package dto provides data transfer objects for certificate, issuer and contact
// HTTP request and response handling.
package dto

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	certificatesUsecase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	entityDto "github.com/allisson/keyvault-emulator/internal/entity/http/dto"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
	customValidation "github.com/allisson/keyvault-emulator/internal/validation"
)

var keyUsageValues = []interface{}{
	string(certificatesDomain.KeyUsageDigitalSignature),
	string(certificatesDomain.KeyUsageNonRepudiation),
	string(certificatesDomain.KeyUsageKeyEncipherment),
	string(certificatesDomain.KeyUsageDataEncipherment),
	string(certificatesDomain.KeyUsageKeyAgreement),
	string(certificatesDomain.KeyUsageKeyCertSign),
	string(certificatesDomain.KeyUsageCRLSign),
	string(certificatesDomain.KeyUsageEncipherOnly),
	string(certificatesDomain.KeyUsageDecipherOnly),
}

// KeyPropertiesRequest describes the key generated for a certificate.
type KeyPropertiesRequest struct {
	Exportable *bool   `json:"exportable,omitempty"`
	KeyType    *string `json:"kty,omitempty"`
	KeySize    *int    `json:"key_size,omitempty"`
	ReuseKey   *bool   `json:"reuse_key,omitempty"`
}

// Validate checks the key properties.
func (r *KeyPropertiesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.KeyType, customValidation.NotBlank),
		validation.Field(&r.KeySize, validation.Min(0)),
	)
}

// SecretPropertiesRequest describes the secret exported for a certificate.
type SecretPropertiesRequest struct {
	ContentType string `json:"contentType"`
}

// Validate checks the secret properties.
func (r *SecretPropertiesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ContentType, validation.Required,
			validation.In(secretsDomain.ContentTypePKCS12, secretsDomain.ContentTypePEM)),
	)
}

// SubjectAlternativeNamesRequest lists the SAN entries of a certificate.
type SubjectAlternativeNamesRequest struct {
	Emails   []string `json:"emails,omitempty"`
	DNSNames []string `json:"dns_names,omitempty"`
	UPNs     []string `json:"upns,omitempty"`
}

// Validate checks the SAN entries.
func (r *SubjectAlternativeNamesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Emails, validation.Each(customValidation.Email)),
		validation.Field(&r.DNSNames, validation.Each(validation.Required, customValidation.NoWhitespace)),
		validation.Field(&r.UPNs, validation.Each(validation.Required)),
	)
}

// X509PropertiesRequest describes the certificate itself.
type X509PropertiesRequest struct {
	Subject                 *string                         `json:"subject,omitempty"`
	SubjectAlternativeNames *SubjectAlternativeNamesRequest `json:"sans,omitempty"`
	ExtendedKeyUsage        []string                        `json:"ekus,omitempty"`
	KeyUsage                []string                        `json:"key_usage,omitempty"`
	ValidityMonths          *int                            `json:"validity_months,omitempty"`
}

// Validate checks the X.509 properties.
func (r *X509PropertiesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SubjectAlternativeNames),
		validation.Field(&r.ExtendedKeyUsage, validation.Each(validation.Required)),
		validation.Field(&r.KeyUsage, validation.Each(validation.In(keyUsageValues...))),
		validation.Field(&r.ValidityMonths,
			validation.Min(1),
			validation.Max(certificatesDomain.MaxValidityMonths)),
	)
}

// IssuerParametersRequest references the issuer of a certificate.
type IssuerParametersRequest struct {
	Name            string `json:"name"`
	CertificateType string `json:"cty,omitempty"`
}

// Validate checks the issuer reference.
func (r *IssuerParametersRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank),
	)
}

// LifetimeTriggerRequest fires a lifetime action.
type LifetimeTriggerRequest struct {
	LifetimePercentage int `json:"lifetime_percentage,omitempty"`
	DaysBeforeExpiry   int `json:"days_before_expiry,omitempty"`
}

// LifetimeActionTypeRequest names the action of a lifetime action.
type LifetimeActionTypeRequest struct {
	ActionType string `json:"action_type"`
}

// LifetimeActionRequest is an action taken during the lifetime of a certificate.
type LifetimeActionRequest struct {
	Trigger LifetimeTriggerRequest    `json:"trigger"`
	Action  LifetimeActionTypeRequest `json:"action"`
}

// Validate checks one lifetime action.
func (r LifetimeActionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Action, validation.By(func(interface{}) error {
			return validation.Validate(r.Action.ActionType,
				validation.Required,
				validation.In(certificatesDomain.ActionAutoRenew, certificatesDomain.ActionEmailContacts))
		})),
		validation.Field(&r.Trigger, validation.By(func(interface{}) error {
			if r.Trigger.LifetimePercentage != 0 && r.Trigger.DaysBeforeExpiry != 0 {
				return validation.NewError("validation_trigger", "must set only one of lifetime_percentage or days_before_expiry")
			}
			return validation.Validate(r.Trigger.LifetimePercentage, validation.Min(0), validation.Max(99))
		})),
	)
}

// PolicyAttributesRequest carries the caller-settable policy attributes.
type PolicyAttributesRequest struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// PolicyRequest is a certificate policy. Sections that are left out keep their
// current or default values.
type PolicyRequest struct {
	KeyProperties    *KeyPropertiesRequest    `json:"key_props,omitempty"`
	SecretProperties *SecretPropertiesRequest `json:"secret_props,omitempty"`
	X509Properties   *X509PropertiesRequest   `json:"x509_props,omitempty"`
	Issuer           *IssuerParametersRequest `json:"issuer,omitempty"`
	LifetimeActions  []LifetimeActionRequest  `json:"lifetime_actions,omitempty"`
	Attributes       *PolicyAttributesRequest `json:"attributes,omitempty"`
}

// Validate checks every section of the policy.
func (r *PolicyRequest) Validate() error {
	if r == nil {
		return nil
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.KeyProperties),
		validation.Field(&r.SecretProperties),
		validation.Field(&r.X509Properties),
		validation.Field(&r.Issuer),
		validation.Field(&r.LifetimeActions),
	)
}

// ToPatch converts the request into a domain policy patch. A nil request yields nil.
func (r *PolicyRequest) ToPatch() *certificatesDomain.PolicyPatch {
	if r == nil {
		return nil
	}

	patch := &certificatesDomain.PolicyPatch{}
	if k := r.KeyProperties; k != nil {
		keyProps := &certificatesDomain.KeyPropertiesPatch{
			Exportable: k.Exportable,
			KeySize:    k.KeySize,
			ReuseKey:   k.ReuseKey,
		}
		if k.KeyType != nil {
			kty := keysDomain.KeyType(*k.KeyType)
			keyProps.KeyType = &kty
		}
		patch.KeyProperties = keyProps
	}
	if r.SecretProperties != nil {
		patch.SecretProperties = &certificatesDomain.SecretProperties{ContentType: r.SecretProperties.ContentType}
	}
	if x := r.X509Properties; x != nil {
		x509Props := &certificatesDomain.X509PropertiesPatch{
			Subject:          x.Subject,
			ExtendedKeyUsage: x.ExtendedKeyUsage,
			ValidityMonths:   x.ValidityMonths,
		}
		if x.SubjectAlternativeNames != nil {
			x509Props.SubjectAlternativeNames = &certificatesDomain.SubjectAlternativeNames{
				Emails:   x.SubjectAlternativeNames.Emails,
				DNSNames: x.SubjectAlternativeNames.DNSNames,
				UPNs:     x.SubjectAlternativeNames.UPNs,
			}
		}
		if x.KeyUsage != nil {
			x509Props.KeyUsage = make([]certificatesDomain.KeyUsage, 0, len(x.KeyUsage))
			for _, usage := range x.KeyUsage {
				x509Props.KeyUsage = append(x509Props.KeyUsage, certificatesDomain.KeyUsage(usage))
			}
		}
		patch.X509Properties = x509Props
	}
	if r.Issuer != nil {
		patch.Issuer = &certificatesDomain.IssuerParameters{
			Name:            r.Issuer.Name,
			CertificateType: r.Issuer.CertificateType,
		}
	}
	if r.LifetimeActions != nil {
		patch.LifetimeActions = make([]certificatesDomain.LifetimeAction, 0, len(r.LifetimeActions))
		for _, action := range r.LifetimeActions {
			patch.LifetimeActions = append(patch.LifetimeActions, certificatesDomain.LifetimeAction{
				Trigger: certificatesDomain.LifetimeTrigger{
					LifetimePercentage: action.Trigger.LifetimePercentage,
					DaysBeforeExpiry:   action.Trigger.DaysBeforeExpiry,
				},
				ActionType: action.Action.ActionType,
			})
		}
	}
	if r.Attributes != nil {
		patch.Enabled = r.Attributes.Enabled
	}
	return patch
}

// CreateCertificateRequest contains the parameters for issuing a certificate version.
type CreateCertificateRequest struct {
	Policy     *PolicyRequest               `json:"policy,omitempty"`
	Attributes *entityDto.AttributesRequest `json:"attributes,omitempty"`
	Tags       map[string]string            `json:"tags,omitempty"`
}

// Validate checks if the create certificate request is valid.
func (r *CreateCertificateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Policy),
		validation.Field(&r.Attributes),
	)
}

// ToInput converts the request into use case input.
func (r *CreateCertificateRequest) ToInput() certificatesUsecase.CreateCertificateInput {
	return certificatesUsecase.CreateCertificateInput{
		Policy:     r.Policy.ToPatch(),
		Attributes: r.Attributes.ToPatch(),
		Tags:       r.Tags,
	}
}

// ImportCertificateRequest carries externally issued material, either PEM or a
// base64 encoded PFX.
type ImportCertificateRequest struct {
	Value      string                       `json:"value"`
	Password   string                       `json:"pwd,omitempty"`
	Policy     *PolicyRequest               `json:"policy,omitempty"`
	Attributes *entityDto.AttributesRequest `json:"attributes,omitempty"`
	Tags       map[string]string            `json:"tags,omitempty"`
}

// Validate checks if the import certificate request is valid.
func (r *ImportCertificateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Policy),
		validation.Field(&r.Attributes),
	)
}

// ToInput converts the request into use case input.
func (r *ImportCertificateRequest) ToInput() certificatesUsecase.ImportCertificateInput {
	return certificatesUsecase.ImportCertificateInput{
		Value:      r.Value,
		Password:   r.Password,
		Policy:     r.Policy.ToPatch(),
		Attributes: r.Attributes.ToPatch(),
		Tags:       r.Tags,
	}
}

// MergeCertificateRequest carries the signed chain of a pending certificate, leaf
// first. Entries are standard base64 DER.
type MergeCertificateRequest struct {
	X5C        []string                     `json:"x5c"`
	Attributes *entityDto.AttributesRequest `json:"attributes,omitempty"`
	Tags       map[string]string            `json:"tags,omitempty"`
}

// Validate checks if the merge request is valid.
func (r *MergeCertificateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.X5C, validation.Required, validation.Each(validation.Required, customValidation.Base64)),
		validation.Field(&r.Attributes),
	)
}

// ToInput converts the request into use case input. Validate must have succeeded.
func (r *MergeCertificateRequest) ToInput() certificatesUsecase.MergeCertificateInput {
	chain := make([][]byte, 0, len(r.X5C))
	for _, entry := range r.X5C {
		der, _ := base64.StdEncoding.DecodeString(entry)
		chain = append(chain, der)
	}
	return certificatesUsecase.MergeCertificateInput{
		X5C:        chain,
		Attributes: r.Attributes.ToPatch(),
		Tags:       r.Tags,
	}
}

// BindIssuerRequest points a certificate policy at an issuer.
type BindIssuerRequest struct {
	Name string `json:"name"`
}

// Validate checks if the bind issuer request is valid.
func (r *BindIssuerRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.EntityName),
	)
}

// IssuerCredentialsRequest authenticates against an issuer provider.
type IssuerCredentialsRequest struct {
	AccountID string `json:"account_id,omitempty"`
	Password  string `json:"pwd,omitempty"`
}

// AdministratorDetailsRequest describes one administrator of an organization.
type AdministratorDetailsRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Validate checks the administrator email when one is given.
func (r AdministratorDetailsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, customValidation.Email),
	)
}

// OrganizationDetailsRequest describes the organization registered with an issuer.
type OrganizationDetailsRequest struct {
	ID           string                        `json:"id,omitempty"`
	AdminDetails []AdministratorDetailsRequest `json:"admin_details,omitempty"`
}

// Validate checks every administrator.
func (r *OrganizationDetailsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AdminDetails),
	)
}

// IssuerAttributesRequest carries the caller-settable issuer attributes.
type IssuerAttributesRequest struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// IssuerRequest is the PATCH body of an issuer. Absent fields are kept.
type IssuerRequest struct {
	Provider            string                      `json:"provider,omitempty"`
	Credentials         *IssuerCredentialsRequest   `json:"credentials,omitempty"`
	OrganizationDetails *OrganizationDetailsRequest `json:"org_details,omitempty"`
	Attributes          *IssuerAttributesRequest    `json:"attributes,omitempty"`
}

// Validate checks if the issuer request is valid.
func (r *IssuerRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrganizationDetails),
	)
}

func (r *IssuerRequest) credentials() *certificatesDomain.IssuerCredentials {
	if r.Credentials == nil {
		return nil
	}
	return &certificatesDomain.IssuerCredentials{
		AccountID: r.Credentials.AccountID,
		Password:  r.Credentials.Password,
	}
}

func (r *IssuerRequest) organizationDetails() *certificatesDomain.OrganizationDetails {
	if r.OrganizationDetails == nil {
		return nil
	}
	org := &certificatesDomain.OrganizationDetails{ID: r.OrganizationDetails.ID}
	for _, admin := range r.OrganizationDetails.AdminDetails {
		org.AdminDetails = append(org.AdminDetails, certificatesDomain.AdministratorDetails{
			FirstName: admin.FirstName,
			LastName:  admin.LastName,
			Email:     admin.Email,
			Phone:     admin.Phone,
		})
	}
	return org
}

func (r *IssuerRequest) enabled() *bool {
	if r.Attributes == nil {
		return nil
	}
	return r.Attributes.Enabled
}

// ToPatch converts the request into a domain issuer patch.
func (r *IssuerRequest) ToPatch() certificatesDomain.IssuerPatch {
	patch := certificatesDomain.IssuerPatch{
		Credentials:         r.credentials(),
		OrganizationDetails: r.organizationDetails(),
		Enabled:             r.enabled(),
	}
	if r.Provider != "" {
		provider := r.Provider
		patch.Provider = &provider
	}
	return patch
}

// SetIssuerRequest is the PUT body of an issuer. The provider is required.
type SetIssuerRequest struct {
	IssuerRequest
}

// Validate checks if the set issuer request is valid.
func (r *SetIssuerRequest) Validate() error {
	if err := validation.ValidateStruct(&r.IssuerRequest,
		validation.Field(&r.Provider, validation.Required, customValidation.NotBlank),
	); err != nil {
		return err
	}
	return r.IssuerRequest.Validate()
}

// ToInput converts the request into use case input.
func (r *SetIssuerRequest) ToInput() certificatesUsecase.IssuerInput {
	return certificatesUsecase.IssuerInput{
		Provider:            r.Provider,
		Credentials:         r.credentials(),
		OrganizationDetails: r.organizationDetails(),
		Enabled:             r.enabled(),
	}
}

// ContactRequest is one certificate contact.
type ContactRequest struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Validate checks the contact email when one is given.
func (r ContactRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, customValidation.Email),
	)
}

// ContactsRequest replaces the vault contact list.
type ContactsRequest struct {
	Contacts []ContactRequest `json:"contacts"`
}

// Validate checks if the contacts request is valid.
func (r *ContactsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Contacts, validation.Required),
	)
}

// ToDomain converts the request into domain contacts.
func (r *ContactsRequest) ToDomain() []certificatesDomain.Contact {
	out := make([]certificatesDomain.Contact, 0, len(r.Contacts))
	for _, contact := range r.Contacts {
		out = append(out, certificatesDomain.Contact{
			Email: contact.Email,
			Name:  contact.Name,
			Phone: contact.Phone,
		})
	}
	return out
}
