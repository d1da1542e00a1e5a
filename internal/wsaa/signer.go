package wsaa

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/hhrutter/pkcs7"

	"github.com/rezonia/afip-client/internal/model"
)

// Signer wraps the caller's certificate and private key and produces
// the CMS envelope WSAA expects around a TRA. It is a pure transform:
// identical inputs yield identical output modulo the signing time
// attribute.
type Signer struct {
	cert *x509.Certificate
	key  crypto.PrivateKey
}

// NewSigner parses PEM credential material and checks that the
// certificate and key correspond. Any defect in the material is an
// authentication error.
func NewSigner(creds model.Credentials) (*Signer, error) {
	cert, err := parseCertificate(creds.Certificate)
	if err != nil {
		return nil, model.NewAuthError("failed to parse certificate", err)
	}

	key, err := parsePrivateKey(creds.PrivateKey)
	if err != nil {
		return nil, model.NewAuthError("failed to parse private key", err)
	}

	if !keyMatchesCert(cert, key) {
		return nil, model.NewAuthError("private key does not match certificate", nil)
	}

	return &Signer{cert: cert, key: key}, nil
}

// Sign wraps the TRA in a SHA-256 CMS SignedData envelope and returns
// the base64 of the DER bytes, the form LoginCms transports.
func (s *Signer) Sign(tra []byte) (string, error) {
	signed, err := pkcs7.NewSignedData(tra)
	if err != nil {
		return "", model.NewAuthError("failed to initialize signed data", err)
	}
	signed.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)

	if err := signed.AddSigner(s.cert, s.key, pkcs7.SignerInfoConfig{}); err != nil {
		return "", model.NewAuthError("failed to sign request", err)
	}

	der, err := signed.Finish()
	if err != nil {
		return "", model.NewAuthError("failed to finalize signature", err)
	}

	return base64.StdEncoding.EncodeToString(der), nil
}

func parseCertificate(pemData []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	return x509.ParseCertificate(block.Bytes)
}

func parsePrivateKey(pemData []byte) (crypto.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("unsupported private key format")
}

// keyMatchesCert compares the certificate's public key against the one
// derived from the private key.
func keyMatchesCert(cert *x509.Certificate, key crypto.PrivateKey) bool {
	signer, ok := key.(crypto.Signer)
	if !ok {
		return false
	}
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return pub.Equal(signer.Public())
	case *ecdsa.PublicKey:
		return pub.Equal(signer.Public())
	}
	return false
}
