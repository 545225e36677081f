// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
)

// Encode writes a command as a RESP2 array of bulk strings: the command
// name first, then its (already-filtered) arguments. The whole frame is
// assembled into one buffered write so concurrent writers on the same
// connection can't interleave partial frames.
func Encode(w io.Writer, cmd Command) error {
	var frame bytes.Buffer
	bw := bufio.NewWriter(&frame)

	if err := writeArrayHeader(bw, 1+len(cmd.Args)); err != nil {
		return err
	}
	if err := writeBulk(bw, []byte(cmd.Name)); err != nil {
		return err
	}
	for _, a := range cmd.Args {
		if err := writeBulk(bw, a.bytes()); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if _, err := w.Write(frame.Bytes()); err != nil {
		return err
	}
	if out, ok := w.(*bufio.Writer); ok {
		return out.Flush()
	}
	return nil
}

// EncodeBatch writes N commands back to back to w in a single write,
// used by the pipeline executor's flush. A write error aborts the whole
// batch.
func EncodeBatch(w io.Writer, cmds []Command) error {
	var frame bytes.Buffer
	bw := bufio.NewWriterSize(&frame, 4096)
	for _, cmd := range cmds {
		if err := writeArrayHeader(bw, 1+len(cmd.Args)); err != nil {
			return err
		}
		if err := writeBulk(bw, []byte(cmd.Name)); err != nil {
			return err
		}
		for _, a := range cmd.Args {
			if err := writeBulk(bw, a.bytes()); err != nil {
				return err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	_, err := w.Write(frame.Bytes())
	return err
}

func writeArrayHeader(w *bufio.Writer, n int) error {
	if _, err := w.WriteString("*"); err != nil {
		return err
	}
	if _, err := w.WriteString(strconv.Itoa(n)); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}

func writeBulk(w *bufio.Writer, b []byte) error {
	if _, err := w.WriteString("$"); err != nil {
		return err
	}
	if _, err := w.WriteString(strconv.Itoa(len(b))); err != nil {
		return err
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}
