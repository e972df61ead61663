package crypto

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestGeneratePair(t *testing.T) {
	certPEM, keyPEM, err := GeneratePair([]string{"127.0.0.1", "::1"})
	if err != nil {
		t.Fatalf("GeneratePair(): %s", err)
	}

	if _, err := tls.X509KeyPair(certPEM, keyPEM); err != nil {
		t.Fatalf("tls.X509KeyPair(): %s", err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		t.Fatal("no PEM block in certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("x509.ParseCertificate(): %s", err)
	}

	if len(cert.IPAddresses) != 2 {
		t.Fatalf("IPAddresses = %v but want 2 entries", cert.IPAddresses)
	}
	if !cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")) {
		t.Errorf("IPAddresses[0] = %s", cert.IPAddresses[0])
	}
	if err := cert.VerifyHostname("127.0.0.1"); err != nil {
		t.Errorf("VerifyHostname(127.0.0.1): %s", err)
	}
}

func TestGeneratePairInvalidHost(t *testing.T) {
	if _, _, err := GeneratePair([]string{"not-an-ip"}); err == nil {
		t.Error("GeneratePair() with an invalid IP expected an error")
	}
}

func TestWritePair(t *testing.T) {
	certPEM, keyPEM, err := GeneratePair([]string{"127.0.0.1"})
	if err != nil {
		t.Fatalf("GeneratePair(): %s", err)
	}

	dir := t.TempDir()
	certPath, keyPath, err := WritePair(dir, certPEM, keyPEM)
	if err != nil {
		t.Fatalf("WritePair(): %s", err)
	}

	if certPath != filepath.Join(dir, "cert.pem") {
		t.Errorf("certPath = %s", certPath)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("os.Stat(%s): %s", keyPath, err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("key file permissions = %o but want 0600", perm)
	}
}
