// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package resp

import (
	"fmt"
	"strconv"
)

// Kind tags the shape of a decoded Reply.
type Kind byte

const (
	KindSimpleString Kind = '+'
	KindError        Kind = '-'
	KindInteger      Kind = ':'
	KindBulk         Kind = '$'
	KindArray        Kind = '*'
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "SimpleString"
	case KindError:
		return "Error"
	case KindInteger:
		return "Integer"
	case KindBulk:
		return "Bulk"
	case KindArray:
		return "Array"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

// Reply is the recursive tagged union over the RESP2 reply set: simple
// string, error, integer, bulk string (possibly null) and array (possibly
// null, possibly nested). Accessing a Reply as the wrong shape returns
// ErrInvalidState rather than panicking — callers that already know the
// shape (typed command wrappers) can ignore the error; generic callers
// must check it.
type Reply struct {
	Kind    Kind
	Str     string  // SimpleString / Error body
	Int     int64   // Integer value
	Bulk    []byte  // Bulk payload; nil means a null bulk ($-1)
	BulkSet bool    // true once Bulk has been decoded (even to nil)
	Array   []Reply // Array elements; nil + ArraySet=true means null array
	ArraySet bool
}

// IsNil reports whether this reply is a null bulk ($-1) or a null array (*-1).
func (r Reply) IsNil() bool {
	switch r.Kind {
	case KindBulk:
		return r.BulkSet && r.Bulk == nil
	case KindArray:
		return r.ArraySet && r.Array == nil
	default:
		return false
	}
}

// AsSimpleString returns the SimpleString body, or ErrInvalidState if this
// reply isn't one.
func (r Reply) AsSimpleString() (string, error) {
	if r.Kind != KindSimpleString {
		return "", fmt.Errorf("%w: expected SimpleString, got %s", ErrInvalidState, r.Kind)
	}
	return r.Str, nil
}

// AsError returns the server error line, or ErrInvalidState if this reply
// isn't an Error frame.
func (r Reply) AsError() (string, error) {
	if r.Kind != KindError {
		return "", fmt.Errorf("%w: expected Error, got %s", ErrInvalidState, r.Kind)
	}
	return r.Str, nil
}

// AsInteger returns the signed 64-bit integer value, or ErrInvalidState if
// this reply isn't an Integer frame.
func (r Reply) AsInteger() (int64, error) {
	if r.Kind != KindInteger {
		return 0, fmt.Errorf("%w: expected Integer, got %s", ErrInvalidState, r.Kind)
	}
	return r.Int, nil
}

// AsBulk returns the bulk payload (nil for a null bulk), or
// ErrInvalidState if this reply isn't a Bulk frame.
func (r Reply) AsBulk() ([]byte, error) {
	if r.Kind != KindBulk {
		return nil, fmt.Errorf("%w: expected Bulk, got %s", ErrInvalidState, r.Kind)
	}
	return r.Bulk, nil
}

// AsBulkString is AsBulk decoded as UTF-8 text; a null bulk yields "".
func (r Reply) AsBulkString() (string, error) {
	b, err := r.AsBulk()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AsArray returns the child replies, or ErrInvalidState if this reply isn't
// an Array frame.
func (r Reply) AsArray() ([]Reply, error) {
	if r.Kind != KindArray {
		return nil, fmt.Errorf("%w: expected Array, got %s", ErrInvalidState, r.Kind)
	}
	return r.Array, nil
}

// String renders the reply in a form useful for %v/logging, not for
// wire-protocol consumption.
func (r Reply) String() string {
	switch r.Kind {
	case KindSimpleString:
		return r.Str
	case KindError:
		return "ERR " + r.Str
	case KindInteger:
		return strconv.FormatInt(r.Int, 10)
	case KindBulk:
		if r.Bulk == nil {
			return "<nil>"
		}
		return string(r.Bulk)
	case KindArray:
		if r.Array == nil {
			return "<nil array>"
		}
		out := make([]string, len(r.Array))
		for i, c := range r.Array {
			out[i] = c.String()
		}
		return fmt.Sprintf("%v", out)
	default:
		return "<invalid reply>"
	}
}
