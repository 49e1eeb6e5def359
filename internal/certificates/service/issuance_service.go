// Package service implements the certificate issuance engine: self-signed X.509
// synthesis from a policy, signing requests for merge flows, PKCS#12 and PEM export,
// and parsing of imported certificate material.
//
// The engine holds no certificate state. RSA generation is delegated to the key
// engine so certificate keys share its bounded generation pool.
package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" // #nosec G505 -- x5t thumbprints are defined as SHA-1
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"software.sslmate.com/src/go-pkcs12"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
)

const (
	pemTypeCertificate   = "CERTIFICATE"
	pemTypePrivateKey    = "PRIVATE KEY"
	pemTypeRSAPrivateKey = "RSA PRIVATE KEY"

	serialBits = 128
)

// KeyGenerator creates RSA keys for new certificates.
type KeyGenerator interface {
	GenerateRSAPrivateKey(ctx context.Context, size int) (*rsa.PrivateKey, error)
}

// Issued is certificate material ready to be stored: the private key, the leaf, the
// CA chain behind it and, for merge flows, the DER signing request.
type Issued struct {
	PrivateKey *rsa.PrivateKey
	Leaf       *x509.Certificate
	Chain      []*x509.Certificate
	CSR        []byte
}

// IssuanceService synthesizes and parses certificate material.
type IssuanceService struct {
	keys  KeyGenerator
	clock func() time.Time
}

// NewIssuanceService creates an issuance engine that generates keys with keys.
func NewIssuanceService(keys KeyGenerator) *IssuanceService {
	return &IssuanceService{keys: keys, clock: time.Now}
}

// Issue generates a key and a self-signed certificate honoring policy. Policies naming
// the Unknown issuer also get a signing request for a later merge.
func (s *IssuanceService) Issue(ctx context.Context, policy certificatesDomain.Policy) (*Issued, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	priv, err := s.keys.GenerateRSAPrivateKey(ctx, policy.KeyProperties.KeySize)
	if err != nil {
		return nil, err
	}

	leaf, err := s.selfSign(priv, policy)
	if err != nil {
		return nil, err
	}

	issued := &Issued{PrivateKey: priv, Leaf: leaf}
	if !policy.SelfSigned() {
		issued.CSR, err = s.signingRequest(priv, policy)
		if err != nil {
			return nil, err
		}
	}
	return issued, nil
}

func (s *IssuanceService) selfSign(priv *rsa.PrivateKey, policy certificatesDomain.Policy) (*x509.Certificate, error) {
	props := policy.X509Properties

	subject, err := ParseSubject(props.Subject)
	if err != nil {
		return nil, err
	}
	usage, err := keyUsage(props.KeyUsage)
	if err != nil {
		return nil, err
	}
	ekus, unknownEKUs, err := extKeyUsage(props.ExtendedKeyUsage)
	if err != nil {
		return nil, err
	}
	sanExt, err := sanExtension(props.SubjectAlternativeNames)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subject alternative names: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), serialBits))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := s.clock().UTC()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               subject,
		NotBefore:             now,
		NotAfter:              now.AddDate(0, props.ValidityMonths, 0),
		KeyUsage:              usage,
		ExtKeyUsage:           ekus,
		UnknownExtKeyUsage:    unknownEKUs,
		BasicConstraintsValid: true,
		IsCA:                  usage&x509.KeyUsageCertSign != 0,
	}
	if sanExt != nil {
		template.ExtraExtensions = []pkix.Extension{*sanExt}
	} else {
		template.DNSNames = props.SubjectAlternativeNames.DNSNames
		template.EmailAddresses = props.SubjectAlternativeNames.Emails
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	return x509.ParseCertificate(der)
}

func (s *IssuanceService) signingRequest(priv *rsa.PrivateKey, policy certificatesDomain.Policy) ([]byte, error) {
	props := policy.X509Properties

	subject, err := ParseSubject(props.Subject)
	if err != nil {
		return nil, err
	}
	sanExt, err := sanExtension(props.SubjectAlternativeNames)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subject alternative names: %w", err)
	}

	template := &x509.CertificateRequest{Subject: subject}
	if sanExt != nil {
		template.ExtraExtensions = []pkix.Extension{*sanExt}
	} else {
		template.DNSNames = props.SubjectAlternativeNames.DNSNames
		template.EmailAddresses = props.SubjectAlternativeNames.Emails
	}

	csr, err := x509.CreateCertificateRequest(rand.Reader, template, priv)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate signing request: %w", err)
	}
	return csr, nil
}

// Merge pairs a pending private key with a signed chain. The first entry of x5c is
// the leaf and must certify the pending key.
func (s *IssuanceService) Merge(priv *rsa.PrivateKey, x5c [][]byte) (*Issued, error) {
	if priv == nil {
		return nil, certificatesDomain.ErrNoPendingCertificate
	}
	if len(x5c) == 0 {
		return nil, certificatesDomain.ErrInvalidCertificate
	}

	certs := make([]*x509.Certificate, 0, len(x5c))
	for _, der := range x5c {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, certificatesDomain.ErrInvalidCertificate
		}
		certs = append(certs, cert)
	}

	pub, ok := certs[0].PublicKey.(*rsa.PublicKey)
	if !ok || !pub.Equal(&priv.PublicKey) {
		return nil, certificatesDomain.ErrMergeKeyMismatch
	}

	return &Issued{PrivateKey: priv, Leaf: certs[0], Chain: certs[1:]}, nil
}

// Export renders issued material as a secret value. PKCS#12 values are base64
// encoded and carry no password; PEM values hold the PKCS#8 key followed by the chain.
func (s *IssuanceService) Export(issued *Issued, contentType string) (string, error) {
	switch contentType {
	case secretsDomain.ContentTypePKCS12:
		pfx, err := pkcs12.Passwordless.Encode(issued.PrivateKey, issued.Leaf, issued.Chain, "")
		if err != nil {
			return "", fmt.Errorf("failed to encode pkcs12: %w", err)
		}
		return base64.StdEncoding.EncodeToString(pfx), nil

	case secretsDomain.ContentTypePEM:
		keyDER, err := x509.MarshalPKCS8PrivateKey(issued.PrivateKey)
		if err != nil {
			return "", fmt.Errorf("failed to encode private key: %w", err)
		}

		var buf bytes.Buffer
		blocks := []*pem.Block{
			{Type: pemTypePrivateKey, Bytes: keyDER},
			{Type: pemTypeCertificate, Bytes: issued.Leaf.Raw},
		}
		for _, ca := range issued.Chain {
			blocks = append(blocks, &pem.Block{Type: pemTypeCertificate, Bytes: ca.Raw})
		}
		for _, block := range blocks {
			if err := pem.Encode(&buf, block); err != nil {
				return "", fmt.Errorf("failed to encode pem: %w", err)
			}
		}
		return buf.String(), nil

	default:
		return "", certificatesDomain.ErrUnsupportedContentType
	}
}

// Parse reads imported material: PEM text, or base64 PKCS#12 protected by password.
// It returns the material and the content type it was supplied in.
func (s *IssuanceService) Parse(value, password string) (*Issued, string, error) {
	if strings.Contains(value, "-----BEGIN") {
		issued, err := parsePEM([]byte(value))
		return issued, secretsDomain.ContentTypePEM, err
	}

	pfx, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, "", certificatesDomain.ErrInvalidCertificate
	}
	key, leaf, chain, err := pkcs12.DecodeChain(pfx, password)
	if err != nil {
		return nil, "", certificatesDomain.ErrInvalidCertificate
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, "", certificatesDomain.ErrUnsupportedKeyType
	}
	return &Issued{PrivateKey: priv, Leaf: leaf, Chain: chain}, secretsDomain.ContentTypePKCS12, nil
}

func parsePEM(data []byte) (*Issued, error) {
	var priv *rsa.PrivateKey
	var certs []*x509.Certificate

	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}

		switch block.Type {
		case pemTypeCertificate:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, certificatesDomain.ErrInvalidCertificate
			}
			certs = append(certs, cert)
		case pemTypePrivateKey:
			key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, certificatesDomain.ErrInvalidCertificate
			}
			rsaKey, ok := key.(*rsa.PrivateKey)
			if !ok {
				return nil, certificatesDomain.ErrUnsupportedKeyType
			}
			priv = rsaKey
		case pemTypeRSAPrivateKey:
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, certificatesDomain.ErrInvalidCertificate
			}
			priv = key
		}
	}

	if len(certs) == 0 {
		return nil, certificatesDomain.ErrInvalidCertificate
	}
	if priv == nil {
		return nil, certificatesDomain.ErrPrivateKeyRequired
	}

	// The leaf is the certificate of the private key; the rest is chain.
	leafIndex := -1
	for i, cert := range certs {
		if pub, ok := cert.PublicKey.(*rsa.PublicKey); ok && pub.Equal(&priv.PublicKey) {
			leafIndex = i
			break
		}
	}
	if leafIndex < 0 {
		return nil, certificatesDomain.ErrMergeKeyMismatch
	}

	chain := make([]*x509.Certificate, 0, len(certs)-1)
	for i, cert := range certs {
		if i != leafIndex {
			chain = append(chain, cert)
		}
	}
	return &Issued{PrivateKey: priv, Leaf: certs[leafIndex], Chain: chain}, nil
}

// DescribePolicy returns policy with its key and X.509 properties taken from an
// imported leaf, so the stored policy matches the certificate it describes.
func DescribePolicy(policy certificatesDomain.Policy, issued *Issued) certificatesDomain.Policy {
	leaf := issued.Leaf

	policy.KeyProperties.KeySize = issued.PrivateKey.N.BitLen()
	policy.X509Properties.Subject = leaf.Subject.String()
	policy.X509Properties.SubjectAlternativeNames = certificatesDomain.SubjectAlternativeNames{
		Emails:   leaf.EmailAddresses,
		DNSNames: leaf.DNSNames,
		UPNs:     upnsFromCertificate(leaf),
	}

	months := int(math.Round(leaf.NotAfter.Sub(leaf.NotBefore).Hours() / (24 * 30)))
	policy.X509Properties.ValidityMonths = max(months, 1)
	return policy
}

// Thumbprint returns the x5t value of a DER certificate.
func Thumbprint(der []byte) []byte {
	sum := sha1.Sum(der) // #nosec G401 -- x5t thumbprints are defined as SHA-1
	return sum[:]
}
