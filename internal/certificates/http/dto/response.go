package dto

import (
	"encoding/base64"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	entityDto "github.com/allisson/keyvault-emulator/internal/entity/http/dto"
	customValidation "github.com/allisson/keyvault-emulator/internal/validation"
)

// KeyPropertiesResponse describes the key of a policy.
type KeyPropertiesResponse struct {
	Exportable bool   `json:"exportable"`
	KeyType    string `json:"kty"`
	KeySize    int    `json:"key_size"`
	ReuseKey   bool   `json:"reuse_key"`
}

// SecretPropertiesResponse describes the secret of a policy.
type SecretPropertiesResponse struct {
	ContentType string `json:"contentType"`
}

// SubjectAlternativeNamesResponse lists the SAN entries of a policy.
type SubjectAlternativeNamesResponse struct {
	Emails   []string `json:"emails,omitempty"`
	DNSNames []string `json:"dns_names,omitempty"`
	UPNs     []string `json:"upns,omitempty"`
}

// X509PropertiesResponse describes the certificate of a policy.
type X509PropertiesResponse struct {
	Subject                 string                           `json:"subject"`
	SubjectAlternativeNames *SubjectAlternativeNamesResponse `json:"sans,omitempty"`
	ExtendedKeyUsage        []string                         `json:"ekus,omitempty"`
	KeyUsage                []string                         `json:"key_usage,omitempty"`
	ValidityMonths          int                              `json:"validity_months"`
}

// IssuerParametersResponse references the issuer of a policy.
type IssuerParametersResponse struct {
	Name            string `json:"name"`
	CertificateType string `json:"cty,omitempty"`
}

// LifetimeTriggerResponse fires a lifetime action.
type LifetimeTriggerResponse struct {
	LifetimePercentage int `json:"lifetime_percentage,omitempty"`
	DaysBeforeExpiry   int `json:"days_before_expiry,omitempty"`
}

// LifetimeActionTypeResponse names the action of a lifetime action.
type LifetimeActionTypeResponse struct {
	ActionType string `json:"action_type"`
}

// LifetimeActionResponse is one lifetime action of a policy.
type LifetimeActionResponse struct {
	Trigger LifetimeTriggerResponse    `json:"trigger"`
	Action  LifetimeActionTypeResponse `json:"action"`
}

// PolicyAttributesResponse are the management attributes of a policy.
type PolicyAttributesResponse struct {
	Enabled bool  `json:"enabled"`
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
}

// PolicyResponse represents a certificate policy in API responses.
type PolicyResponse struct {
	ID               string                   `json:"id"`
	KeyProperties    KeyPropertiesResponse    `json:"key_props"`
	SecretProperties SecretPropertiesResponse `json:"secret_props"`
	X509Properties   X509PropertiesResponse   `json:"x509_props"`
	Issuer           IssuerParametersResponse `json:"issuer"`
	LifetimeActions  []LifetimeActionResponse `json:"lifetime_actions"`
	Attributes       PolicyAttributesResponse `json:"attributes"`
}

// PendingResponse references the operation of a certificate that awaits a merge.
type PendingResponse struct {
	ID string `json:"id"`
}

// CertificateBundleResponse represents a certificate version in API responses.
type CertificateBundleResponse struct {
	ID             string                       `json:"id"`
	Kid            string                       `json:"kid"`
	Sid            string                       `json:"sid"`
	X509Thumbprint string                       `json:"x5t"`
	CER            string                       `json:"cer"`
	Policy         PolicyResponse               `json:"policy"`
	Pending        *PendingResponse             `json:"pending,omitempty"`
	Attributes     entityDto.AttributesResponse `json:"attributes"`
	Tags           map[string]string            `json:"tags,omitempty"`
}

// DeletedCertificateBundleResponse is a certificate bundle with its recovery metadata.
type DeletedCertificateBundleResponse struct {
	CertificateBundleResponse
	entityDto.DeletedFields
}

// CertificateItemResponse is one entry of a certificate listing.
type CertificateItemResponse struct {
	ID             string                       `json:"id"`
	X509Thumbprint string                       `json:"x5t"`
	Attributes     entityDto.AttributesResponse `json:"attributes"`
	Tags           map[string]string            `json:"tags,omitempty"`
}

// DeletedCertificateItemResponse is one entry of a deleted certificate listing.
type DeletedCertificateItemResponse struct {
	CertificateItemResponse
	entityDto.DeletedFields
}

// OperationResponse represents a certificate operation in API responses.
type OperationResponse struct {
	ID                    string                   `json:"id"`
	Issuer                IssuerParametersResponse `json:"issuer"`
	CSR                   string                   `json:"csr,omitempty"`
	CancellationRequested bool                     `json:"cancellation_requested"`
	Status                string                   `json:"status"`
	StatusDetails         string                   `json:"status_details,omitempty"`
	Target                string                   `json:"target,omitempty"`
	RequestID             string                   `json:"request_id"`
}

// IssuerCredentialsResponse shows the account of an issuer. The password is never returned.
type IssuerCredentialsResponse struct {
	AccountID string `json:"account_id,omitempty"`
}

// AdministratorDetailsResponse describes one administrator of an organization.
type AdministratorDetailsResponse struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// OrganizationDetailsResponse describes the organization registered with an issuer.
type OrganizationDetailsResponse struct {
	ID           string                         `json:"id,omitempty"`
	AdminDetails []AdministratorDetailsResponse `json:"admin_details,omitempty"`
}

// IssuerAttributesResponse are the management attributes of an issuer.
type IssuerAttributesResponse struct {
	Enabled bool  `json:"enabled"`
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
}

// IssuerBundleResponse represents an issuer in API responses.
type IssuerBundleResponse struct {
	ID                  string                       `json:"id"`
	Provider            string                       `json:"provider"`
	Credentials         *IssuerCredentialsResponse   `json:"credentials,omitempty"`
	OrganizationDetails *OrganizationDetailsResponse `json:"org_details,omitempty"`
	Attributes          IssuerAttributesResponse     `json:"attributes"`
}

// IssuerItemResponse is one entry of an issuer listing.
type IssuerItemResponse struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// ContactResponse is one certificate contact.
type ContactResponse struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ContactsResponse represents the vault contact list in API responses.
type ContactsResponse struct {
	ID       string            `json:"id"`
	Contacts []ContactResponse `json:"contacts"`
}

// PolicyID returns the identifier of the policy of a certificate.
func PolicyID(ids domain.IDBuilder, name string) string {
	return ids.ID(domain.KindCertificate, name, "policy")
}

// MapPolicyToResponse converts a policy to its API shape.
func MapPolicyToResponse(id string, policy *certificatesDomain.Policy) PolicyResponse {
	x509Props := X509PropertiesResponse{
		Subject:          policy.X509Properties.Subject,
		ExtendedKeyUsage: policy.X509Properties.ExtendedKeyUsage,
		ValidityMonths:   policy.X509Properties.ValidityMonths,
	}
	if sans := policy.X509Properties.SubjectAlternativeNames; !sans.Empty() {
		x509Props.SubjectAlternativeNames = &SubjectAlternativeNamesResponse{
			Emails:   sans.Emails,
			DNSNames: sans.DNSNames,
			UPNs:     sans.UPNs,
		}
	}
	for _, usage := range policy.X509Properties.KeyUsage {
		x509Props.KeyUsage = append(x509Props.KeyUsage, string(usage))
	}

	actions := make([]LifetimeActionResponse, 0, len(policy.LifetimeActions))
	for _, action := range policy.LifetimeActions {
		actions = append(actions, LifetimeActionResponse{
			Trigger: LifetimeTriggerResponse{
				LifetimePercentage: action.Trigger.LifetimePercentage,
				DaysBeforeExpiry:   action.Trigger.DaysBeforeExpiry,
			},
			Action: LifetimeActionTypeResponse{ActionType: action.ActionType},
		})
	}

	return PolicyResponse{
		ID: id,
		KeyProperties: KeyPropertiesResponse{
			Exportable: policy.KeyProperties.Exportable,
			KeyType:    string(policy.KeyProperties.KeyType),
			KeySize:    policy.KeyProperties.KeySize,
			ReuseKey:   policy.KeyProperties.ReuseKey,
		},
		SecretProperties: SecretPropertiesResponse{ContentType: policy.SecretProperties.ContentType},
		X509Properties:   x509Props,
		Issuer: IssuerParametersResponse{
			Name:            policy.Issuer.Name,
			CertificateType: policy.Issuer.CertificateType,
		},
		LifetimeActions: actions,
		Attributes: PolicyAttributesResponse{
			Enabled: policy.Attributes.Enabled,
			Created: policy.Attributes.Created,
			Updated: policy.Attributes.Updated,
		},
	}
}

// MapCertificateToResponse converts a certificate version to its bundle.
func MapCertificateToResponse(
	ids domain.IDBuilder,
	record *domain.Record[certificatesDomain.Certificate],
) CertificateBundleResponse {
	cert := record.Payload
	bundle := CertificateBundleResponse{
		ID:             record.ID,
		Kid:            cert.KeyID,
		Sid:            cert.SecretID,
		X509Thumbprint: customValidation.EncodeBase64URL(cert.X509Thumbprint),
		CER:            base64.StdEncoding.EncodeToString(cert.CER),
		Policy:         MapPolicyToResponse(PolicyID(ids, record.Name), &cert.Policy),
		Attributes:     entityDto.MapAttributes(record.Attributes),
		Tags:           record.Tags,
	}
	if cert.Pending() {
		bundle.Pending = &PendingResponse{ID: ids.ID(domain.KindCertificate, record.Name, "pending")}
	}
	return bundle
}

// MapDeletedCertificateToResponse converts a deleted certificate to its bundle.
func MapDeletedCertificateToResponse(
	ids domain.IDBuilder,
	deleted *domain.DeletedRecord[certificatesDomain.Certificate],
) DeletedCertificateBundleResponse {
	return DeletedCertificateBundleResponse{
		CertificateBundleResponse: MapCertificateToResponse(ids, deleted.Record),
		DeletedFields:             entityDto.MapDeletedFields(deleted),
	}
}

// MapCertificateToItem converts a certificate version to a list entry.
func MapCertificateToItem(record *domain.Record[certificatesDomain.Certificate]) CertificateItemResponse {
	return CertificateItemResponse{
		ID:             record.ID,
		X509Thumbprint: customValidation.EncodeBase64URL(record.Payload.X509Thumbprint),
		Attributes:     entityDto.MapAttributes(record.Attributes),
		Tags:           record.Tags,
	}
}

// MapCertificatesToItems converts a page of certificates to list entries.
func MapCertificatesToItems(records []*domain.Record[certificatesDomain.Certificate]) []CertificateItemResponse {
	out := make([]CertificateItemResponse, 0, len(records))
	for _, r := range records {
		out = append(out, MapCertificateToItem(r))
	}
	return out
}

// MapDeletedCertificatesToItems converts a page of deleted certificates to list entries.
func MapDeletedCertificatesToItems(
	ids domain.IDBuilder,
	records []*domain.Record[certificatesDomain.Certificate],
) []DeletedCertificateItemResponse {
	out := make([]DeletedCertificateItemResponse, 0, len(records))
	for _, r := range records {
		out = append(out, DeletedCertificateItemResponse{
			CertificateItemResponse: MapCertificateToItem(r),
			DeletedFields:           entityDto.DeletedFieldsFromRecord(ids, domain.KindCertificate, r),
		})
	}
	return out
}

// MapOperationToResponse converts a certificate operation to its API shape.
func MapOperationToResponse(op *certificatesDomain.Operation) OperationResponse {
	resp := OperationResponse{
		ID: op.ID,
		Issuer: IssuerParametersResponse{
			Name:            op.Issuer.Name,
			CertificateType: op.Issuer.CertificateType,
		},
		CancellationRequested: op.CancellationRequested,
		Status:                op.Status,
		StatusDetails:         op.StatusDetails,
		Target:                op.Target,
		RequestID:             op.RequestID,
	}
	if len(op.CSR) > 0 {
		resp.CSR = base64.StdEncoding.EncodeToString(op.CSR)
	}
	return resp
}

// MapIssuerToResponse converts an issuer to its bundle.
func MapIssuerToResponse(issuer *certificatesDomain.Issuer) IssuerBundleResponse {
	resp := IssuerBundleResponse{
		ID:       issuer.ID,
		Provider: issuer.Provider,
		Attributes: IssuerAttributesResponse{
			Enabled: issuer.Attributes.Enabled,
			Created: issuer.Attributes.Created,
			Updated: issuer.Attributes.Updated,
		},
	}
	if issuer.Credentials != nil {
		resp.Credentials = &IssuerCredentialsResponse{AccountID: issuer.Credentials.AccountID}
	}
	if org := issuer.OrganizationDetails; org != nil {
		resp.OrganizationDetails = &OrganizationDetailsResponse{ID: org.ID}
		for _, admin := range org.AdminDetails {
			resp.OrganizationDetails.AdminDetails = append(resp.OrganizationDetails.AdminDetails,
				AdministratorDetailsResponse(admin))
		}
	}
	return resp
}

// MapIssuersToItems converts issuers to list entries.
func MapIssuersToItems(issuers []*certificatesDomain.Issuer) []IssuerItemResponse {
	out := make([]IssuerItemResponse, 0, len(issuers))
	for _, issuer := range issuers {
		out = append(out, IssuerItemResponse{ID: issuer.ID, Provider: issuer.Provider})
	}
	return out
}

// MapContactsToResponse converts the contact list to its API shape.
func MapContactsToResponse(contacts *certificatesDomain.Contacts) ContactsResponse {
	out := make([]ContactResponse, 0, len(contacts.Contacts))
	for _, contact := range contacts.Contacts {
		out = append(out, ContactResponse(contact))
	}
	return ContactsResponse{ID: contacts.ID, Contacts: out}
}
