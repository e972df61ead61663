package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	content := `
quicaddr: 0.0.0.0:4434
tcpaddr: 0.0.0.0:5001
cert: /etc/sirang/cert.pem
key: /etc/sirang/key.pem
buffer: 65536
log: /var/log/sirang.log
debug: true
`
	path := filepath.Join(t.TempDir(), "remote.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %s", err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile(%s): %s", path, err)
	}

	if f.QUICAddr != "0.0.0.0:4434" {
		t.Errorf("QUICAddr = %q", f.QUICAddr)
	}
	if f.TCPReverseAddr != "0.0.0.0:5001" {
		t.Errorf("TCPReverseAddr = %q", f.TCPReverseAddr)
	}
	if f.CertFile != "/etc/sirang/cert.pem" {
		t.Errorf("CertFile = %q", f.CertFile)
	}
	if f.KeyFile != "/etc/sirang/key.pem" {
		t.Errorf("KeyFile = %q", f.KeyFile)
	}
	if f.BufferSize != 65536 {
		t.Errorf("BufferSize = %d", f.BufferSize)
	}
	if f.LogFile != "/var/log/sirang.log" {
		t.Errorf("LogFile = %q", f.LogFile)
	}
	if !f.Debug {
		t.Error("Debug = false")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() on a missing file expected an error")
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("quicaddr: [unclosed"), 0644); err != nil {
		t.Fatalf("writing fixture: %s", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() on invalid YAML expected an error")
	}
}
