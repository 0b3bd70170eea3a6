package swish_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"software.sslmate.com/src/go-pkcs12"
)

const (
	testMerchantAlias = "1231181189"
	testPassphrase    = "swish"
	clientCommonName  = "1231181189-client"
)

// testPKI is a throwaway CA with a server certificate for 127.0.0.1 and a client
// certificate written both as PKCS#12 and as PEM files.
type testPKI struct {
	caPool     *x509.CertPool
	caPEMPath  string
	caDERPath  string
	serverCert tls.Certificate

	clientP12Path  string
	clientCertPath string
	clientKeyPath  string
}

func newTestPKI(t *testing.T) *testPKI {
	t.Helper()
	dir := t.TempDir()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	caTemplate := &x509.Certificate{
		SerialNumber:          serialNumber(t),
		Subject:               pkix.Name{CommonName: "Test Swish Root CA", Organization: []string{"Test"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	require.NoError(t, err)
	caCert, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	pki := &testPKI{
		caPool:         x509.NewCertPool(),
		caPEMPath:      filepath.Join(dir, "root.pem"),
		caDERPath:      filepath.Join(dir, "root.der"),
		clientP12Path:  filepath.Join(dir, "client.p12"),
		clientCertPath: filepath.Join(dir, "client.pem"),
		clientKeyPath:  filepath.Join(dir, "client.key"),
	}
	pki.caPool.AddCert(caCert)
	writePEM(t, pki.caPEMPath, "CERTIFICATE", caDER)
	require.NoError(t, os.WriteFile(pki.caDERPath, caDER, 0o600))

	serverKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	serverDER, err := x509.CreateCertificate(rand.Reader, &x509.Certificate{
		SerialNumber: serialNumber(t),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1"), net.IPv6loopback},
	}, caCert, &serverKey.PublicKey, caKey)
	require.NoError(t, err)
	pki.serverCert = tls.Certificate{Certificate: [][]byte{serverDER}, PrivateKey: serverKey}

	clientKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	clientDER, err := x509.CreateCertificate(rand.Reader, &x509.Certificate{
		SerialNumber: serialNumber(t),
		Subject:      pkix.Name{CommonName: clientCommonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}, caCert, &clientKey.PublicKey, caKey)
	require.NoError(t, err)
	clientCert, err := x509.ParseCertificate(clientDER)
	require.NoError(t, err)

	p12, err := pkcs12.Modern.Encode(clientKey, clientCert, []*x509.Certificate{caCert}, testPassphrase)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pki.clientP12Path, p12, 0o600))

	keyDER, err := x509.MarshalPKCS8PrivateKey(clientKey)
	require.NoError(t, err)
	writePEM(t, pki.clientCertPath, "CERTIFICATE", clientDER)
	writePEM(t, pki.clientKeyPath, "PRIVATE KEY", keyDER)

	return pki
}

func serialNumber(t *testing.T) *big.Int {
	t.Helper()
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)
	return n
}

func writePEM(t *testing.T, path, blockType string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	require.NoError(t, os.WriteFile(path, data, 0o600))
}
