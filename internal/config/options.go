// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package config loads and validates client options, either from a
// redis:// / rediss:// URL, a YAML file, or Go literals.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Options is the full set of connection, retry, logging and transport
// options a client can be constructed with — loadable from YAML or a
// redis:// URL, and re-exported at the package root as Options.
type Options struct {
	Network ConnInfo    `yaml:"network"`
	Auth    AuthInfo    `yaml:"auth"`
	TLS     TLSInfo     `yaml:"tls"`
	Retry   RetryInfo   `yaml:"retry"`
	Logging LoggingInfo `yaml:"logging"`
	QoS     QoSInfo     `yaml:"qos"`
}

// ConnInfo addresses the server and identifies this client to it.
type ConnInfo struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	DB          int           `yaml:"db"`
	ClientName  string        `yaml:"client_name"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// AuthInfo holds AUTH credentials. Password alone authenticates against
// legacy requirepass; Username set together with Password uses ACL auth.
type AuthInfo struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TLSInfo configures the client-side TLS/mTLS transport.
type TLSInfo struct {
	Enabled            bool   `yaml:"enabled"`
	CACert             string `yaml:"ca_cert"`
	ClientCert         string `yaml:"client_cert"`
	ClientKey          string `yaml:"client_key"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// RetryInfo configures establishment retry and reconnect backoff.
type RetryInfo struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	Jitter       float64       `yaml:"jitter"`
}

// LoggingInfo configures the client's slog output.
type LoggingInfo struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`

	// DebugLogDir, if set, gives every connection (the multiplexed
	// session and each pub/sub session) its own always-debug log file
	// under {DebugLogDir}/{component}/{connectionID}.log, in addition
	// to the base logger above. Useful for isolating one connection's
	// reconnect churn without raising Level globally.
	DebugLogDir string `yaml:"debug_log_dir"`
}

// QoSInfo configures optional socket-level tuning.
type QoSInfo struct {
	DSCP                string `yaml:"dscp"`                    // e.g. "EF", "AF41"
	MaxWriteBytesPerSec string `yaml:"max_write_bytes_per_sec"` // e.g. "4mb", "0" disables
}

// Load reads and validates a YAML options file.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading client config: %w", err)
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validating client config: %w", err)
	}
	return &opts, nil
}

// Validate applies defaults and rejects out-of-range values. Safe to
// call on an Options built directly from Go literals, not just from
// YAML/URL parsing.
func (o *Options) Validate() error {
	if o.Network.Host == "" {
		o.Network.Host = "localhost"
	}
	if o.Network.Port == 0 {
		o.Network.Port = 6379
	}
	if o.Network.DB < 0 {
		return fmt.Errorf("network.db must be >= 0, got %d", o.Network.DB)
	}
	if o.Network.DialTimeout <= 0 {
		o.Network.DialTimeout = 10 * time.Second
	}

	if o.TLS.Enabled && o.TLS.ClientCert != "" && o.TLS.ClientKey == "" {
		return fmt.Errorf("tls.client_key is required when tls.client_cert is set")
	}
	if o.TLS.Enabled && o.TLS.ClientKey != "" && o.TLS.ClientCert == "" {
		return fmt.Errorf("tls.client_cert is required when tls.client_key is set")
	}

	if o.Retry.MaxAttempts <= 0 {
		o.Retry.MaxAttempts = 10
	}
	if o.Retry.InitialDelay <= 0 {
		o.Retry.InitialDelay = 200 * time.Millisecond
	}
	if o.Retry.MaxDelay <= 0 {
		o.Retry.MaxDelay = 30 * time.Second
	}
	if o.Retry.Multiplier <= 0 {
		o.Retry.Multiplier = 2.0
	}
	if o.Retry.Jitter < 0 || o.Retry.Jitter > 1 {
		return fmt.Errorf("retry.jitter must be between 0.0 and 1.0, got %.2f", o.Retry.Jitter)
	}
	if o.Retry.Jitter == 0 {
		o.Retry.Jitter = 0.2
	}

	if o.Logging.Level == "" {
		o.Logging.Level = "info"
	}
	if o.Logging.Format == "" {
		o.Logging.Format = "json"
	}

	if o.QoS.DSCP != "" {
		if _, err := parseDSCPName(o.QoS.DSCP); err != nil {
			return fmt.Errorf("qos.dscp: %w", err)
		}
	}
	if o.QoS.MaxWriteBytesPerSec != "" && o.QoS.MaxWriteBytesPerSec != "0" {
		if _, err := ParseByteSize(o.QoS.MaxWriteBytesPerSec); err != nil {
			return fmt.Errorf("qos.max_write_bytes_per_sec: %w", err)
		}
	}

	return nil
}

// parseDSCPName validates a DSCP name without importing internal/connection,
// keeping config free of transport-layer imports.
// It mirrors connection.ParseDSCP's accepted name set exactly.
func parseDSCPName(name string) (int, error) {
	name = strings.TrimSpace(strings.ToUpper(name))
	valid := map[string]bool{
		"EF": true,
		"AF11": true, "AF12": true, "AF13": true,
		"AF21": true, "AF22": true, "AF23": true,
		"AF31": true, "AF32": true, "AF33": true,
		"AF41": true, "AF42": true, "AF43": true,
		"CS0": true, "CS1": true, "CS2": true, "CS3": true,
		"CS4": true, "CS5": true, "CS6": true, "CS7": true,
	}
	if !valid[name] {
		return 0, fmt.Errorf("unknown DSCP value %q", name)
	}
	return 0, nil
}

// MaxWriteBytesPerSecRaw parses QoS.MaxWriteBytesPerSec into bytes/sec,
// 0 meaning throttling disabled.
func (o *Options) MaxWriteBytesPerSecRaw() (int64, error) {
	if o.QoS.MaxWriteBytesPerSec == "" || o.QoS.MaxWriteBytesPerSec == "0" {
		return 0, nil
	}
	return ParseByteSize(o.QoS.MaxWriteBytesPerSec)
}

// ParseByteSize converts human-readable sizes like "256mb", "1gb" to
// bytes, matching longest suffix first so "mb" never matches as "b".
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	type suffix struct {
		s string
		m int64
	}
	suffixes := []suffix{
		{"gb", 1024 * 1024 * 1024},
		{"mb", 1024 * 1024},
		{"kb", 1024},
		{"b", 1},
	}

	for _, sfx := range suffixes {
		if strings.HasSuffix(s, sfx.s) {
			numStr := strings.TrimSuffix(s, sfx.s)
			num, err := strconv.ParseInt(numStr, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid number %q: %w", numStr, err)
			}
			return num * sfx.m, nil
		}
	}

	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown size format %q", s)
	}
	return num, nil
}
