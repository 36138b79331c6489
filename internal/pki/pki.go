// Package pki issues and inspects the X.509 material that anchors agent
// trust. Issuance is exposed through the Signer interface so a production
// deployment can swap the self-signed stand-in for a real CA integration
// without changing callers.
package pki

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"strings"
	"time"
)

var ErrInvalidCertificate = errors.New("invalid certificate")

const defaultKeyBits = 2048

// clockSkewGrace backdates NotBefore so issuer/agent clock drift cannot make
// a freshly issued certificate "not yet valid".
const clockSkewGrace = 24 * time.Hour

// Request describes the identity and validity window of a certificate to issue.
type Request struct {
	CommonName         string
	Organization       string
	OrganizationalUnit string
	Country            string
	ValidityDays       int
	SubjectAltNames    []string
}

// Bundle carries everything issuance produces. PrivateKeyDER is PKCS#1.
type Bundle struct {
	Certificate    *x509.Certificate
	CertificateDER []byte
	PrivateKeyDER  []byte
	Thumbprint     string
	SerialNumber   string
	NotBefore      time.Time
	NotAfter       time.Time
}

// Signer is the injectable issuance capability.
type Signer interface {
	Issue(req Request) (*Bundle, error)
}

// SelfSigner issues self-signed client-authentication certificates:
// 2048-bit RSA keys and SHA-256 signatures.
type SelfSigner struct {
	KeyBits int
	Now     func() time.Time
}

func NewSelfSigner() *SelfSigner {
	return &SelfSigner{KeyBits: defaultKeyBits, Now: time.Now}
}

func (s *SelfSigner) Issue(req Request) (*Bundle, error) {
	if req.CommonName == "" {
		return nil, fmt.Errorf("common name is required")
	}
	if req.ValidityDays <= 0 {
		return nil, fmt.Errorf("validity days must be positive")
	}

	bits := s.KeyBits
	if bits == 0 {
		bits = defaultKeyBits
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	notBefore := now().Add(-clockSkewGrace)
	notAfter := notBefore.AddDate(0, 0, req.ValidityDays)

	dnsNames, ipAddresses, emails := ClassifySubjectAltNames(req.SubjectAltNames)

	template := x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               subjectName(req),
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		SignatureAlgorithm:    x509.SHA256WithRSA,
		BasicConstraintsValid: true,
		IsCA:                  false,
		DNSNames:              dnsNames,
		IPAddresses:           ipAddresses,
		EmailAddresses:        emails,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse issued certificate: %w", err)
	}

	return &Bundle{
		Certificate:    cert,
		CertificateDER: certDER,
		PrivateKeyDER:  x509.MarshalPKCS1PrivateKey(privateKey),
		Thumbprint:     Thumbprint(certDER),
		SerialNumber:   SerialString(serialNumber),
		NotBefore:      notBefore,
		NotAfter:       notAfter,
	}, nil
}

func subjectName(req Request) pkix.Name {
	name := pkix.Name{CommonName: req.CommonName}
	if req.Organization != "" {
		name.Organization = []string{req.Organization}
	}
	if req.OrganizationalUnit != "" {
		name.OrganizationalUnit = []string{req.OrganizationalUnit}
	}
	if req.Country != "" {
		name.Country = []string{req.Country}
	}
	return name
}

// ClassifySubjectAltNames sorts free-form SAN entries by syntax: parseable
// addresses become IP SANs, entries with an @ become email SANs, everything
// else is treated as a DNS name. Blank entries are dropped.
func ClassifySubjectAltNames(entries []string) (dnsNames []string, ipAddresses []net.IP, emails []string) {
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			ipAddresses = append(ipAddresses, ip)
			continue
		}
		if strings.Contains(entry, "@") {
			emails = append(emails, entry)
			continue
		}
		dnsNames = append(dnsNames, entry)
	}
	return dnsNames, ipAddresses, emails
}

// Thumbprint returns the conventional certificate thumbprint: uppercase hex
// SHA-1 over the DER encoding.
func Thumbprint(der []byte) string {
	sum := sha1.Sum(der)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// SerialString renders a serial number the way certificate stores display it.
func SerialString(n *big.Int) string {
	return strings.ToUpper(n.Text(16))
}

// ParseCertificate accepts DER bytes or a PEM block containing one.
func ParseCertificate(data []byte) (*x509.Certificate, error) {
	if block, _ := pem.Decode(data); block != nil {
		data = block.Bytes
	}
	cert, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
	}
	return cert, nil
}

// VerifyChain builds a trust chain for the certificate at the given instant.
// Under self-signed issuance the certificate itself is the trust anchor.
func VerifyChain(cert *x509.Certificate, at time.Time) error {
	roots := x509.NewCertPool()
	roots.AddCert(cert)

	_, err := cert.Verify(x509.VerifyOptions{
		Roots:       roots,
		CurrentTime: at,
		KeyUsages:   []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})
	return err
}

// CommonNameFromSubject pulls the CN attribute out of a stored subject
// string such as "CN=dc01.corp.local,OU=Agents,O=TrustPlane".
func CommonNameFromSubject(subject string) string {
	for _, part := range strings.Split(subject, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "CN=") {
			return strings.TrimPrefix(part, "CN=")
		}
	}
	return ""
}

// EncodeCertificatePEM renders DER certificate bytes as PEM.
func EncodeCertificatePEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

// EncodePrivateKeyPEM renders PKCS#1 private key bytes as PEM.
func EncodePrivateKeyPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der})
}
