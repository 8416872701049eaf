package truststore

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	keystore "github.com/pavlo-v-chernykh/keystore-go/v4"
	"software.sslmate.com/src/go-pkcs12"
)

// Supported trust store types.
const (
	TypePEM    = "PEM"
	TypePKCS12 = "PKCS12"
	TypeJKS    = "JKS"
)

// NormalizeType maps a user supplied type name onto one of the Type constants.
func NormalizeType(typ string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(typ)) {
	case "", TypePEM:
		return TypePEM, nil
	case TypePKCS12, "P12", "PFX":
		return TypePKCS12, nil
	case TypeJKS:
		return TypeJKS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}
}

// Load reads the trust store at path and returns a pool of its certificates.
func Load(path, typ, password string) (*x509.CertPool, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	kind, err := NormalizeType(typ)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrLoad{Path: path, Err: err}
	}

	var certs []*x509.Certificate
	switch kind {
	case TypePKCS12:
		certs, err = decodePKCS12(data, password)
	case TypeJKS:
		certs, err = decodeJKS(data, password)
	default:
		certs, err = decodePEM(data)
	}
	if err != nil {
		return nil, ErrLoad{Path: path, Err: err}
	}
	if len(certs) == 0 {
		return nil, ErrLoad{Path: path, Err: ErrNoCertificates}
	}

	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool, nil
}

// TLSConfig returns a client TLS configuration trusting only pool.
func TLSConfig(pool *x509.CertPool) *tls.Config {
	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}
}

func decodePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, nil
}

// decodePKCS12 reads a certificate-only trust store first and falls back to
// a store holding a private key, returning its leaf and CA certificates.
func decodePKCS12(data []byte, password string) ([]*x509.Certificate, error) {
	certs, err := pkcs12.DecodeTrustStore(data, password)
	if err == nil {
		return certs, nil
	}

	_, leaf, cas, chainErr := pkcs12.DecodeChain(data, password)
	if chainErr != nil {
		return nil, errors.Join(err, chainErr)
	}
	return append([]*x509.Certificate{leaf}, cas...), nil
}

func decodeJKS(data []byte, password string) ([]*x509.Certificate, error) {
	ks := keystore.New()
	if err := ks.Load(bytes.NewReader(data), []byte(password)); err != nil {
		return nil, err
	}

	var certs []*x509.Certificate
	add := func(der []byte) error {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return err
		}
		certs = append(certs, c)
		return nil
	}

	for _, alias := range ks.Aliases() {
		switch {
		case ks.IsTrustedCertificateEntry(alias):
			entry, err := ks.GetTrustedCertificateEntry(alias)
			if err != nil {
				return nil, err
			}
			if err := add(entry.Certificate.Content); err != nil {
				return nil, err
			}
		case ks.IsPrivateKeyEntry(alias):
			chain, err := ks.GetPrivateKeyEntryCertificateChain(alias)
			if err != nil {
				return nil, err
			}
			for _, c := range chain {
				if err := add(c.Content); err != nil {
					return nil, err
				}
			}
		}
	}
	return certs, nil
}
