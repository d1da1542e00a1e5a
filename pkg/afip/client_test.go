package afip_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/afip-client/pkg/afip"
)

func testPEM(t *testing.T) (cert, key []byte) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "client test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, &priv.PublicKey, priv)
	require.NoError(t, err)

	cert = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	key = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})
	return cert, key
}

func TestNew(t *testing.T) {
	cert, key := testPEM(t)

	client, err := afip.New(afip.Config{
		CUIT:        "20-11111111-2",
		Certificate: cert,
		PrivateKey:  key,
		Environment: afip.EnvironmentTesting,
	})
	require.NoError(t, err)

	assert.Equal(t, "20111111112", client.CUIT(), "tax id must be normalized")
	assert.NotNil(t, client.Engine())
	assert.NotNil(t, client.Registry())
}

func TestNewRejectsInvalidCUIT(t *testing.T) {
	cert, key := testPEM(t)

	_, err := afip.New(afip.Config{
		CUIT:        "20111111113",
		Certificate: cert,
		PrivateKey:  key,
		Environment: afip.EnvironmentTesting,
	})
	require.Error(t, err)
	assert.True(t, afip.IsValidation(err))
}

func TestNewRejectsUnknownEnvironment(t *testing.T) {
	cert, key := testPEM(t)

	_, err := afip.New(afip.Config{
		CUIT:        "20111111112",
		Certificate: cert,
		PrivateKey:  key,
		Environment: afip.Environment("staging"),
	})
	require.Error(t, err)
	assert.True(t, afip.IsValidation(err))
}

func TestNewRejectsBadCredentialMaterial(t *testing.T) {
	cert, key := testPEM(t)

	_, err := afip.New(afip.Config{
		CUIT:        "20111111112",
		Certificate: []byte("not a certificate"),
		PrivateKey:  key,
		Environment: afip.EnvironmentTesting,
	})
	assert.True(t, afip.IsAuthentication(err))

	_, err = afip.New(afip.Config{
		CUIT:        "20111111112",
		Certificate: cert,
		PrivateKey:  []byte("not a key"),
		Environment: afip.EnvironmentTesting,
	})
	assert.True(t, afip.IsAuthentication(err))
}

func TestNewRejectsMismatchedKeyPair(t *testing.T) {
	cert, _ := testPEM(t)
	_, otherKey := testPEM(t)

	_, err := afip.New(afip.Config{
		CUIT:        "20111111112",
		Certificate: cert,
		PrivateKey:  otherKey,
		Environment: afip.EnvironmentTesting,
	})
	require.Error(t, err)
	assert.True(t, afip.IsAuthentication(err))
}
