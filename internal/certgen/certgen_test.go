package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGenerateServerCertificate(t *testing.T) {
	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost", "127.0.0.1"}, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateServerCertificate error: %v", err)
	}

	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("certificate and key do not match: %v", err)
	}
	cert, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatalf("parse cert: %v", err)
	}

	if cert.Subject.CommonName != "localhost" {
		t.Errorf("CommonName = %q; want %q", cert.Subject.CommonName, "localhost")
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v; want [localhost]", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || !cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")) {
		t.Errorf("IPAddresses = %v; want [127.0.0.1]", cert.IPAddresses)
	}
	if err := cert.VerifyHostname("127.0.0.1"); err != nil {
		t.Errorf("VerifyHostname(127.0.0.1): %v", err)
	}
	if got := cert.NotAfter.Sub(cert.NotBefore); got < 24*time.Hour || got > 25*time.Hour {
		t.Errorf("validity = %v; want about 24h", got)
	}
	if len(cert.ExtKeyUsage) != 1 || cert.ExtKeyUsage[0] != x509.ExtKeyUsageServerAuth {
		t.Errorf("ExtKeyUsage = %v; want [ServerAuth]", cert.ExtKeyUsage)
	}
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	if _, _, err := GenerateServerCertificate(nil, time.Hour); err == nil {
		t.Fatal("expected error for empty host list")
	}
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	certPath, keyPath, err := WriteFiles(dir, []byte("cert"), []byte("key"))
	if err != nil {
		t.Fatalf("WriteFiles error: %v", err)
	}

	if got, _ := os.ReadFile(certPath); string(got) != "cert" {
		t.Errorf("cert content = %q", got)
	}
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key permissions = %v; want 0600", perm)
	}
}
