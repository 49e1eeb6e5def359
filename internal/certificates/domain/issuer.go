package domain

import (
	"slices"
	"time"
)

// IssuerCredentials authenticate against an issuer provider.
type IssuerCredentials struct {
	AccountID string `json:"account_id,omitempty"`
	Password  string `json:"pwd,omitempty"`
}

// AdministratorDetails describe one administrator of an issuer's organization.
type AdministratorDetails struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// OrganizationDetails describe the organization registered with an issuer.
type OrganizationDetails struct {
	ID           string                 `json:"id,omitempty"`
	AdminDetails []AdministratorDetails `json:"admin_details,omitempty"`
}

// IssuerAttributes are the management attributes of an issuer.
type IssuerAttributes struct {
	Enabled bool  `json:"enabled"`
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
}

// Issuer is a named certificate issuer. Issuers have a single version; deleting one
// only sets the deleted flag.
type Issuer struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Provider            string               `json:"provider"`
	Credentials         *IssuerCredentials   `json:"credentials,omitempty"`
	OrganizationDetails *OrganizationDetails `json:"org_details,omitempty"`
	Attributes          IssuerAttributes     `json:"attributes"`
	Deleted             bool                 `json:"deleted"`
}

// IssuerPatch replaces issuer fields. Nil fields are kept.
type IssuerPatch struct {
	Provider            *string
	Credentials         *IssuerCredentials
	OrganizationDetails *OrganizationDetails
	Enabled             *bool
}

// Apply copies every set field of patch into the issuer.
func (i *Issuer) Apply(patch IssuerPatch, now time.Time) {
	if patch.Provider != nil {
		i.Provider = *patch.Provider
	}
	if patch.Credentials != nil {
		creds := *patch.Credentials
		i.Credentials = &creds
	}
	if patch.OrganizationDetails != nil {
		org := OrganizationDetails{
			ID:           patch.OrganizationDetails.ID,
			AdminDetails: slices.Clone(patch.OrganizationDetails.AdminDetails),
		}
		i.OrganizationDetails = &org
	}
	if patch.Enabled != nil {
		i.Attributes.Enabled = *patch.Enabled
	}
	i.Attributes.Updated = now.Unix()
}

// Validate checks that the issuer names a provider.
func (i *Issuer) Validate() error {
	if i.Provider == "" {
		return ErrInvalidIssuer
	}
	return nil
}
