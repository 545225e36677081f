// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import (
	"crypto/tls"

	"github.com/nishisan-dev/respclient/internal/connection"
)

// buildTLSConfig returns nil when TLS is disabled, so connection.Config
// falls back to a plaintext dial.
func buildTLSConfig(opts Options) (*tls.Config, error) {
	if !opts.TLS.Enabled {
		return nil, nil
	}
	return connection.BuildTLSConfig(opts.TLS.CACert, opts.TLS.ClientCert, opts.TLS.ClientKey, opts.TLS.InsecureSkipVerify)
}
