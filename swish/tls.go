package swish

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"software.sslmate.com/src/go-pkcs12"
)

// LoadIdentity reads the client certificate. certPath is a PKCS#12 bundle when
// keyPath is empty, otherwise a PEM certificate chain paired with the PEM key.
func LoadIdentity(certPath, keyPath, passphrase string) (tls.Certificate, error) {
	if certPath == "" {
		return tls.Certificate{}, &TLSError{Err: errors.New("client certificate path is empty")}
	}

	if keyPath != "" {
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return tls.Certificate{}, &TLSError{Path: certPath, Err: err}
		}
		return cert, nil
	}

	data, err := os.ReadFile(certPath)
	if err != nil {
		return tls.Certificate{}, &TLSError{Path: certPath, Err: err}
	}

	key, leaf, chain, err := pkcs12.DecodeChain(data, passphrase)
	if err != nil {
		return tls.Certificate{}, &TLSError{Path: certPath, Err: fmt.Errorf("decode pkcs12: %w", err)}
	}

	cert := tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}
	for _, ca := range chain {
		cert.Certificate = append(cert.Certificate, ca.Raw)
	}
	return cert, nil
}

// LoadRootCAs builds a pool from a PEM or DER encoded root certificate file.
func LoadRootCAs(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TLSError{Path: path, Err: err}
	}

	pool := x509.NewCertPool()
	if block, _ := pem.Decode(data); block != nil {
		if !pool.AppendCertsFromPEM(data) {
			return nil, &TLSError{Path: path, Err: errors.New("no certificates found in pem data")}
		}
		return pool, nil
	}

	cert, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, &TLSError{Path: path, Err: fmt.Errorf("parse der certificate: %w", err)}
	}
	pool.AddCert(cert)
	return pool, nil
}

// NewTLSConfig returns the client side mutual TLS configuration for cfg.
func NewTLSConfig(cfg Config) (*tls.Config, error) {
	identity, err := LoadIdentity(cfg.CertPath, cfg.KeyPath, cfg.Passphrase)
	if err != nil {
		return nil, err
	}

	tlsCfg := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{identity},
	}

	if cfg.RootCertPath != "" {
		roots, err := LoadRootCAs(cfg.RootCertPath)
		if err != nil {
			return nil, err
		}
		tlsCfg.RootCAs = roots
	}

	return tlsCfg, nil
}
