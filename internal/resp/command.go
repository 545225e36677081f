// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package resp

import "strconv"

// Arg is a command argument value: text, a signed integer, or a raw byte
// buffer. A nil Arg is dropped before encoding (never sent), which is how
// optional command suffixes are expressed — e.g. SET key val [EX seconds].
type Arg struct {
	set   bool
	isInt bool
	isBuf bool
	str   string
	i     int64
	buf   []byte
}

// Str builds a text argument.
func Str(s string) Arg { return Arg{set: true, str: s} }

// Int builds an integer argument, encoded as decimal text on the wire.
func Int(n int64) Arg { return Arg{set: true, isInt: true, i: n} }

// Bytes builds a raw byte-buffer argument, passed through verbatim.
func Bytes(b []byte) Arg { return Arg{set: true, isBuf: true, buf: b} }

// Nil is the dropped/undefined argument: it is filtered out before
// encoding, never occupying a position in the wire array.
var Nil = Arg{}

func (a Arg) bytes() []byte {
	switch {
	case a.isInt:
		return []byte(strconv.FormatInt(a.i, 10))
	case a.isBuf:
		return a.buf
	default:
		return []byte(a.str)
	}
}

// Command is a command name plus its argument list, as submitted to an
// executor before being handed to the codec.
type Command struct {
	Name string
	Args []Arg
}

// NewCommand builds a Command, dropping any unset (Nil) arguments so
// optional suffixes can be expressed positionally by callers without
// extra branching.
func NewCommand(name string, args ...Arg) Command {
	kept := make([]Arg, 0, len(args))
	for _, a := range args {
		if a.set {
			kept = append(kept, a)
		}
	}
	return Command{Name: name, Args: kept}
}
