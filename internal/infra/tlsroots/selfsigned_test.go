package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGenerateSelfSigned(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	certPEM, keyPEM, err := GenerateSelfSigned([]string{"localhost", "127.0.0.1", "::1"}, now, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	if _, err := tls.X509KeyPair(certPEM, keyPEM); err != nil {
		t.Fatalf("generated pair does not load: %v", err)
	}

	block, _ := pem.Decode(certPEM)
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatal(err)
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 2 {
		t.Errorf("IPAddresses = %v, want 2", cert.IPAddresses)
	}
	if !cert.NotAfter.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("NotAfter = %v", cert.NotAfter)
	}
	if err := cert.VerifyHostname("localhost"); err != nil {
		t.Errorf("VerifyHostname: %v", err)
	}
}

func TestGenerateSelfSigned_NoHosts(t *testing.T) {
	if _, _, err := GenerateSelfSigned(nil, time.Now(), time.Hour); !errors.Is(err, ErrNoHosts) {
		t.Errorf("error = %v, want ErrNoHosts", err)
	}
}

func TestEnsureSelfSigned(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "tls", "server.crt")
	keyFile := filepath.Join(dir, "tls", "server.key")

	created, err := EnsureSelfSigned(certFile, keyFile, []string{"localhost"})
	if err != nil {
		t.Fatalf("EnsureSelfSigned() error = %v", err)
	}
	if !created {
		t.Error("first call should create files")
	}

	info, err := os.Stat(keyFile)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file mode = %v, want 0600", perm)
	}

	before, _ := os.ReadFile(certFile)
	created, err = EnsureSelfSigned(certFile, keyFile, []string{"localhost"})
	if err != nil {
		t.Fatalf("second EnsureSelfSigned() error = %v", err)
	}
	if created {
		t.Error("existing files must not be replaced")
	}
	after, _ := os.ReadFile(certFile)
	if string(before) != string(after) {
		t.Error("certificate changed on second call")
	}
}
