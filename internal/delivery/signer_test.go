package delivery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	kp, err := GenerateKey("example.com", "preview")
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	if kp.Domain != "example.com" {
		t.Errorf("Domain = %q, want %q", kp.Domain, "example.com")
	}
	if kp.Selector != "preview" {
		t.Errorf("Selector = %q, want %q", kp.Selector, "preview")
	}
	if kp.PrivateKey == nil {
		t.Fatal("PrivateKey is nil")
	}
	if kp.PrivateKey.N.BitLen() != 2048 {
		t.Errorf("key size = %d bits, want 2048", kp.PrivateKey.N.BitLen())
	}
}

func TestKeyPairDNSRecord(t *testing.T) {
	kp, err := GenerateKey("example.com", "preview")
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	record := kp.DNSRecord()
	if !strings.HasPrefix(record, "v=DKIM1; k=rsa; p=") {
		t.Errorf("DNSRecord() = %q, want v=DKIM1 prefix", record)
	}

	if got, want := kp.DNSName(), "preview._domainkey.example.com"; got != want {
		t.Errorf("DNSName() = %q, want %q", got, want)
	}
}

func TestSaveAndLoadPrivateKey(t *testing.T) {
	kp, err := GenerateKey("example.com", "preview")
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "keys", "preview.pem")
	if err := kp.SavePrivateKey(path); err != nil {
		t.Fatalf("SavePrivateKey() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("key file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadPrivateKey(path)
	if err != nil {
		t.Fatalf("LoadPrivateKey() error = %v", err)
	}
	if loaded.N.Cmp(kp.PrivateKey.N) != 0 {
		t.Error("loaded key does not match saved key")
	}
}

func TestNewSignerFromFile(t *testing.T) {
	kp, err := GenerateKey("example.com", "preview")
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "preview.pem")
	if err := kp.SavePrivateKey(path); err != nil {
		t.Fatalf("SavePrivateKey() error = %v", err)
	}

	signer, err := NewSignerFromFile(path, "example.com", "preview")
	if err != nil {
		t.Fatalf("NewSignerFromFile() error = %v", err)
	}
	if signer.Domain() != "example.com" {
		t.Errorf("Domain() = %q, want %q", signer.Domain(), "example.com")
	}
	if signer.Selector() != "preview" {
		t.Errorf("Selector() = %q, want %q", signer.Selector(), "preview")
	}
}

func TestNewSignerFromFileMissing(t *testing.T) {
	_, err := NewSignerFromFile(filepath.Join(t.TempDir(), "nope.pem"), "example.com", "preview")
	if err == nil {
		t.Error("expected error for missing key file")
	}
}

func TestSign(t *testing.T) {
	kp, err := GenerateKey("example.com", "preview")
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	signer := NewSigner(kp.PrivateKey, "example.com", "preview")

	message := []byte("From: sender@example.com\r\n" +
		"To: rcpt@example.net\r\n" +
		"Subject: Preview\r\n" +
		"\r\n" +
		"Hello\r\n")

	signed, err := signer.Sign(message)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if !strings.Contains(string(signed), "DKIM-Signature:") {
		t.Error("signed message missing DKIM-Signature header")
	}
	if !strings.Contains(string(signed), "d=example.com") {
		t.Error("signature missing domain tag")
	}
	if !strings.Contains(string(signed), "s=preview") {
		t.Error("signature missing selector tag")
	}
}
