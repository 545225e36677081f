// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package resp

import (
	"fmt"
	"io"
	"net"
	"testing"
)

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"closed connection", ErrConnectionClosed, false},
		{"authentication", ErrAuthentication, false},
		{"invalid state", ErrInvalidState, false},
		{"truncated", ErrTruncated, false},
		{"error reply", NewErrorReply("ERR bad"), false},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"eof", io.EOF, true},
		{"net.ErrClosed", net.ErrClosed, false},
		{"broken pipe text", fmt.Errorf("write: broken pipe"), true},
		{"connection reset text", fmt.Errorf("read: connection reset by peer"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetriable(tt.err); got != tt.want {
				t.Errorf("IsRetriable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsErrorReply(t *testing.T) {
	wrapped := fmt.Errorf("command failed: %w", NewErrorReply("WRONGTYPE nope"))
	e, ok := IsErrorReply(wrapped)
	if !ok {
		t.Fatalf("expected to unwrap an *ErrorReply")
	}
	if e.Line != "WRONGTYPE nope" {
		t.Fatalf("expected WRONGTYPE nope, got %q", e.Line)
	}

	if _, ok := IsErrorReply(io.EOF); ok {
		t.Fatalf("expected io.EOF to not be an ErrorReply")
	}
}
