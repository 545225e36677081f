// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

const validYAML = `
network:
  host: "cache.internal"
  port: 6380
  db: 2
auth:
  username: "app"
  password: "secret"
`

func TestLoad_ValidFile(t *testing.T) {
	cfgPath := writeTempConfig(t, validYAML)
	opts, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Network.Host != "cache.internal" {
		t.Errorf("expected host cache.internal, got %q", opts.Network.Host)
	}
	if opts.Network.Port != 6380 {
		t.Errorf("expected port 6380, got %d", opts.Network.Port)
	}
	if opts.Network.DB != 2 {
		t.Errorf("expected db 2, got %d", opts.Network.DB)
	}
	if opts.Auth.Username != "app" || opts.Auth.Password != "secret" {
		t.Errorf("expected auth app/secret, got %q/%q", opts.Auth.Username, opts.Auth.Password)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfgPath := writeTempConfig(t, "{}")
	opts, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Network.Host != "localhost" {
		t.Errorf("expected default host localhost, got %q", opts.Network.Host)
	}
	if opts.Network.Port != 6379 {
		t.Errorf("expected default port 6379, got %d", opts.Network.Port)
	}
	if opts.Network.DialTimeout != 10*time.Second {
		t.Errorf("expected default dial timeout 10s, got %v", opts.Network.DialTimeout)
	}
	if opts.Retry.MaxAttempts != 10 {
		t.Errorf("expected default max_attempts 10, got %d", opts.Retry.MaxAttempts)
	}
	if opts.Retry.Multiplier != 2.0 {
		t.Errorf("expected default multiplier 2.0, got %v", opts.Retry.Multiplier)
	}
	if opts.Retry.Jitter != 0.2 {
		t.Errorf("expected default jitter 0.2, got %v", opts.Retry.Jitter)
	}
	if opts.Logging.Level != "info" || opts.Logging.Format != "json" {
		t.Errorf("expected default logging info/json, got %q/%q", opts.Logging.Level, opts.Logging.Format)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/path/options.yaml"); err == nil {
		t.Fatal("expected error for non-existent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfgPath := writeTempConfig(t, "{{invalid yaml}}")
	if _, err := Load(cfgPath); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_NegativeDB(t *testing.T) {
	opts := &Options{Network: ConnInfo{DB: -1}}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for negative db")
	}
}

func TestValidate_TLSClientCertRequiresKey(t *testing.T) {
	opts := &Options{TLS: TLSInfo{Enabled: true, ClientCert: "/tmp/cert.pem"}}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error when client_cert is set without client_key")
	}
}

func TestValidate_TLSClientKeyRequiresCert(t *testing.T) {
	opts := &Options{TLS: TLSInfo{Enabled: true, ClientKey: "/tmp/key.pem"}}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error when client_key is set without client_cert")
	}
}

func TestValidate_JitterOutOfRange(t *testing.T) {
	opts := &Options{Retry: RetryInfo{Jitter: 1.5}}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for jitter > 1.0")
	}
}

func TestValidate_UnknownDSCP(t *testing.T) {
	opts := &Options{QoS: QoSInfo{DSCP: "BOGUS"}}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for unknown DSCP name")
	}
}

func TestValidate_InvalidMaxWriteBytesPerSec(t *testing.T) {
	opts := &Options{QoS: QoSInfo{MaxWriteBytesPerSec: "not-a-size"}}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for invalid max_write_bytes_per_sec")
	}
}

func TestMaxWriteBytesPerSecRaw(t *testing.T) {
	opts := &Options{QoS: QoSInfo{MaxWriteBytesPerSec: "4mb"}}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	raw, err := opts.MaxWriteBytesPerSecRaw()
	if err != nil {
		t.Fatalf("MaxWriteBytesPerSecRaw: %v", err)
	}
	if raw != 4*1024*1024 {
		t.Errorf("expected 4mb in bytes, got %d", raw)
	}
}

func TestMaxWriteBytesPerSecRaw_Disabled(t *testing.T) {
	opts := &Options{}
	raw, err := opts.MaxWriteBytesPerSecRaw()
	if err != nil {
		t.Fatalf("MaxWriteBytesPerSecRaw: %v", err)
	}
	if raw != 0 {
		t.Errorf("expected 0 when unset, got %d", raw)
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1b", 1},
		{"1kb", 1024},
		{"1mb", 1024 * 1024},
		{"1gb", 1024 * 1024 * 1024},
		{"256mb", 256 * 1024 * 1024},
		{"42", 42},
	}
	for _, tt := range tests {
		got, err := ParseByteSize(tt.in)
		if err != nil {
			t.Errorf("ParseByteSize(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseByteSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseByteSize_Invalid(t *testing.T) {
	if _, err := ParseByteSize("not-a-size"); err == nil {
		t.Fatal("expected error for invalid size string")
	}
	if _, err := ParseByteSize(""); err == nil {
		t.Fatal("expected error for empty size string")
	}
}
