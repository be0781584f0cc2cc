// Package certs inspects the TLS certificate the server is configured with.
package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// ExpiryWarning is how close to NotAfter a certificate must be before
// CheckPair logs a warning.
const ExpiryWarning = 14 * 24 * time.Hour

// CertManager validates a certificate/key pair before the server listens.
type CertManager struct {
	certFile string
	keyFile  string
	now      func() time.Time
}

func NewCertManager(certFile, keyFile string) *CertManager {
	return &CertManager{certFile: certFile, keyFile: keyFile, now: time.Now}
}

// LoadCertificate parses the first PEM certificate of the configured file.
func (cm *CertManager) LoadCertificate() (*x509.Certificate, error) {
	data, err := os.ReadFile(cm.certFile)
	if err != nil {
		return nil, fmt.Errorf("reading certificate: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errors.New("failed to parse certificate PEM")
	}
	return x509.ParseCertificate(block.Bytes)
}

// IsExpired reports whether cert is past its NotAfter.
func (cm *CertManager) IsExpired(cert *x509.Certificate) bool {
	return cert.NotAfter.Before(cm.now())
}

// CheckPair loads the key pair and refuses expired certificates. A certificate
// expiring within ExpiryWarning is accepted with a warning.
func (cm *CertManager) CheckPair(logger *slog.Logger) error {
	if _, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile); err != nil {
		return fmt.Errorf("loading key pair: %w", err)
	}
	cert, err := cm.LoadCertificate()
	if err != nil {
		return err
	}
	if cm.IsExpired(cert) {
		return fmt.Errorf("certificate expired at %s", cert.NotAfter.Format(time.RFC3339))
	}
	if left := cert.NotAfter.Sub(cm.now()); left < ExpiryWarning {
		logger.Warn("certificate expires soon", "not_after", cert.NotAfter, "remaining", left.Round(time.Hour))
	}
	return nil
}
