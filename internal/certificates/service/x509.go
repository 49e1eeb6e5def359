package service

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"strconv"
	"strings"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
)

var (
	oidSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}
	oidUPN            = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 20, 2, 3}
)

// SAN general name tags.
const (
	tagOtherName = 0
	tagRFC822    = 1
	tagDNSName   = 2
)

var keyUsages = map[certificatesDomain.KeyUsage]x509.KeyUsage{
	certificatesDomain.KeyUsageDigitalSignature: x509.KeyUsageDigitalSignature,
	certificatesDomain.KeyUsageNonRepudiation:   x509.KeyUsageContentCommitment,
	certificatesDomain.KeyUsageKeyEncipherment:  x509.KeyUsageKeyEncipherment,
	certificatesDomain.KeyUsageDataEncipherment: x509.KeyUsageDataEncipherment,
	certificatesDomain.KeyUsageKeyAgreement:     x509.KeyUsageKeyAgreement,
	certificatesDomain.KeyUsageKeyCertSign:      x509.KeyUsageCertSign,
	certificatesDomain.KeyUsageCRLSign:          x509.KeyUsageCRLSign,
	certificatesDomain.KeyUsageEncipherOnly:     x509.KeyUsageEncipherOnly,
	certificatesDomain.KeyUsageDecipherOnly:     x509.KeyUsageDecipherOnly,
}

var extKeyUsages = map[string]x509.ExtKeyUsage{
	"1.3.6.1.5.5.7.3.1": x509.ExtKeyUsageServerAuth,
	"1.3.6.1.5.5.7.3.2": x509.ExtKeyUsageClientAuth,
	"1.3.6.1.5.5.7.3.3": x509.ExtKeyUsageCodeSigning,
	"1.3.6.1.5.5.7.3.4": x509.ExtKeyUsageEmailProtection,
	"1.3.6.1.5.5.7.3.8": x509.ExtKeyUsageTimeStamping,
	"1.3.6.1.5.5.7.3.9": x509.ExtKeyUsageOCSPSigning,
}

// ParseSubject parses a distinguished name such as "CN=example.com, O=Contoso".
// Attributes may repeat; unknown attribute types are rejected.
func ParseSubject(subject string) (pkix.Name, error) {
	var name pkix.Name
	if strings.TrimSpace(subject) == "" {
		return name, nil
	}

	for _, part := range strings.Split(subject, ",") {
		attr, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return pkix.Name{}, certificatesDomain.ErrInvalidSubject
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(attr)) {
		case "CN":
			name.CommonName = value
		case "O":
			name.Organization = append(name.Organization, value)
		case "OU":
			name.OrganizationalUnit = append(name.OrganizationalUnit, value)
		case "C":
			name.Country = append(name.Country, value)
		case "L":
			name.Locality = append(name.Locality, value)
		case "ST", "S":
			name.Province = append(name.Province, value)
		case "STREET":
			name.StreetAddress = append(name.StreetAddress, value)
		case "POSTALCODE":
			name.PostalCode = append(name.PostalCode, value)
		case "SERIALNUMBER":
			name.SerialNumber = value
		default:
			return pkix.Name{}, certificatesDomain.ErrInvalidSubject
		}
	}
	return name, nil
}

// keyUsage folds named key usages into x509 bits.
func keyUsage(usages []certificatesDomain.KeyUsage) (x509.KeyUsage, error) {
	var bits x509.KeyUsage
	for _, u := range usages {
		bit, ok := keyUsages[u]
		if !ok {
			return 0, certificatesDomain.ErrInvalidPolicy
		}
		bits |= bit
	}
	return bits, nil
}

// extKeyUsage splits EKU object identifiers into known usages and raw identifiers.
func extKeyUsage(oids []string) ([]x509.ExtKeyUsage, []asn1.ObjectIdentifier, error) {
	var known []x509.ExtKeyUsage
	var unknown []asn1.ObjectIdentifier
	for _, oid := range oids {
		if usage, ok := extKeyUsages[oid]; ok {
			known = append(known, usage)
			continue
		}
		parsed, err := parseOID(oid)
		if err != nil {
			return nil, nil, err
		}
		unknown = append(unknown, parsed)
	}
	return known, unknown, nil
}

func parseOID(s string) (asn1.ObjectIdentifier, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, certificatesDomain.ErrInvalidPolicy
	}
	oid := make(asn1.ObjectIdentifier, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, certificatesDomain.ErrInvalidPolicy
		}
		oid[i] = n
	}
	return oid, nil
}

// sanExtension encodes the subject alternative names including UPN other names,
// which crypto/x509 does not emit on its own. It returns nil when there are no UPNs
// and the standard DNSNames/EmailAddresses fields suffice.
func sanExtension(sans certificatesDomain.SubjectAlternativeNames) (*pkix.Extension, error) {
	if len(sans.UPNs) == 0 {
		return nil, nil
	}

	names := make([]asn1.RawValue, 0, len(sans.UPNs)+len(sans.Emails)+len(sans.DNSNames))
	for _, upn := range sans.UPNs {
		value, err := asn1.MarshalWithParams(upn, "utf8")
		if err != nil {
			return nil, err
		}
		explicit, err := asn1.Marshal(asn1.RawValue{
			Class:      asn1.ClassContextSpecific,
			Tag:        0,
			IsCompound: true,
			Bytes:      value,
		})
		if err != nil {
			return nil, err
		}
		oid, err := asn1.Marshal(oidUPN)
		if err != nil {
			return nil, err
		}
		names = append(names, asn1.RawValue{
			Class:      asn1.ClassContextSpecific,
			Tag:        tagOtherName,
			IsCompound: true,
			Bytes:      append(oid, explicit...),
		})
	}
	for _, email := range sans.Emails {
		names = append(names, asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: tagRFC822, Bytes: []byte(email)})
	}
	for _, dns := range sans.DNSNames {
		names = append(names, asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: tagDNSName, Bytes: []byte(dns)})
	}

	value, err := asn1.Marshal(names)
	if err != nil {
		return nil, err
	}
	return &pkix.Extension{Id: oidSubjectAltName, Value: value}, nil
}

// upnsFromCertificate extracts UPN other names from the SAN extension of cert.
func upnsFromCertificate(cert *x509.Certificate) []string {
	var upns []string
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(oidSubjectAltName) {
			continue
		}
		var names []asn1.RawValue
		if _, err := asn1.Unmarshal(ext.Value, &names); err != nil {
			return nil
		}
		for _, n := range names {
			if n.Class != asn1.ClassContextSpecific || n.Tag != tagOtherName {
				continue
			}
			var oid asn1.ObjectIdentifier
			rest, err := asn1.Unmarshal(n.Bytes, &oid)
			if err != nil || !oid.Equal(oidUPN) {
				continue
			}
			var explicit asn1.RawValue
			if _, err := asn1.Unmarshal(rest, &explicit); err != nil {
				continue
			}
			var upn string
			if _, err := asn1.UnmarshalWithParams(explicit.Bytes, &upn, "utf8"); err != nil {
				continue
			}
			upns = append(upns, upn)
		}
	}
	return upns
}
