// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package resp implements the RESP2 wire codec: request encoding, reply
// decoding and the buffered line/length framing the decoder needs.
package resp

import (
	"errors"
	"io"
	"net"
	"strings"
)

// Sentinel protocol errors, classified by kind rather than exact type:
// InvalidState for shape/protocol violations, EOF for a truncated frame,
// ErrConnectionClosed for user-closed connections.
var (
	// ErrInvalidState is returned when a reply is accessed as the wrong
	// shape, or when the decoder sees an unknown leading byte, or when a
	// bulk payload isn't followed by the mandatory CRLF.
	ErrInvalidState = errors.New("resp: invalid state")

	// ErrTruncated is returned when the underlying stream ends mid-frame.
	ErrTruncated = errors.New("resp: truncated frame")

	// ErrConnectionClosed is returned when an operation is attempted on a
	// connection the caller has already closed.
	ErrConnectionClosed = errors.New("resp: connection closed")

	// ErrAuthentication is returned when the server rejects AUTH. It is
	// terminal: callers must not retry it.
	ErrAuthentication = errors.New("resp: authentication failed")

	// ErrSubscriptionClosed is returned when a subscription iterator is
	// advanced after the session has been closed.
	ErrSubscriptionClosed = errors.New("resp: subscription closed")
)

// ErrorReply wraps a server `-ERR ...` reply. It is a normal, recoverable
// per-command outcome — it never poisons the connection.
type ErrorReply struct {
	Line string
}

func (e *ErrorReply) Error() string { return e.Line }

// NewErrorReply builds an *ErrorReply from a server error line (without the
// leading '-').
func NewErrorReply(line string) *ErrorReply { return &ErrorReply{Line: line} }

// IsErrorReply reports whether err is (or wraps) a server error reply.
func IsErrorReply(err error) (*ErrorReply, bool) {
	var e *ErrorReply
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetriable classifies a transport fault as retriable: broken pipe,
// connection aborted/refused/reset, unexpected EOF, or a released/bad
// resource. A deliberate close (ErrConnectionClosed) is never retriable.
// Protocol violations (ErrInvalidState, ErrTruncated) are not
// retriable either — they are decode errors, not transport faults.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnectionClosed) || errors.Is(err, ErrAuthentication) {
		return false
	}
	if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrTruncated) {
		return false
	}
	if _, ok := IsErrorReply(err); ok {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, net.ErrClosed) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()
	for _, needle := range []string{
		"broken pipe",
		"connection reset",
		"connection aborted",
		"connection refused",
		"use of closed network connection",
		"bad file descriptor",
	} {
		if strings.Contains(msg, needle) {
			// "use of closed network connection" without our own close
			// flag set still means the socket died out from under us —
			// let the caller's closed-flag check take precedence.
			return true
		}
	}
	return false
}
