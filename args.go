// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import "github.com/nishisan-dev/respclient/internal/resp"

// Arg is a command argument value passed to Do or Pipeline.Queue: text,
// a signed integer, or a raw byte buffer.
type Arg = resp.Arg

// Str builds a text argument.
func Str(s string) Arg { return resp.Str(s) }

// Int builds an integer argument, encoded as decimal text on the wire.
func Int(n int64) Arg { return resp.Int(n) }

// Bytes builds a raw byte-buffer argument, passed through verbatim.
func Bytes(b []byte) Arg { return resp.Bytes(b) }

// Reply is a decoded RESP2 reply: simple string, error, integer, bulk
// string (possibly null) or array (possibly null, possibly nested).
type Reply = resp.Reply

// ErrorReply wraps a server `-ERR ...` reply. It is a normal,
// recoverable per-command outcome — it never poisons the connection.
type ErrorReply = resp.ErrorReply

// IsErrorReply reports whether err is (or wraps) a server error reply.
func IsErrorReply(err error) (*ErrorReply, bool) {
	return resp.IsErrorReply(err)
}
