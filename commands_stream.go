// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import (
	"context"

	"github.com/nishisan-dev/respclient/internal/resp"
)

// StreamID identifies a stream entry as the pair (unix milliseconds,
// sequence). StreamIDAuto ("*") requests server-side ID assignment on
// XAdd.
type StreamID = resp.StreamID

// Sentinel stream ID textual forms accepted in place of a concrete ID.
const (
	StreamIDAuto       = resp.StreamIDAuto
	StreamIDRangeStart = resp.StreamIDRangeStart
	StreamIDRangeEnd   = resp.StreamIDRangeEnd
)

// ParseStreamID parses a concrete "ms-seq" or bare "ms" textual ID.
func ParseStreamID(s string) (StreamID, error) { return resp.ParseStreamID(s) }

// XAdd appends an entry to a stream with the given field/value pairs and
// returns the assigned (or supplied) entry ID. id is typically
// StreamIDAuto to let the server assign one.
func (c *Client) XAdd(ctx context.Context, key, id string, fields map[string]string) (string, error) {
	args := make([]Arg, 0, 2+len(fields)*2)
	args = append(args, Str(key), Str(id))
	for field, value := range fields {
		args = append(args, Str(field), Str(value))
	}
	reply, err := c.Do(ctx, "XADD", args...)
	if err != nil {
		return "", err
	}
	return reply.AsBulkString()
}

// XLen returns the number of entries in a stream.
func (c *Client) XLen(ctx context.Context, key string) (int64, error) {
	reply, err := c.Do(ctx, "XLEN", Str(key))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// StreamEntry is one entry returned by XRange: an ID and its field/value
// pairs. Fields is a map, so the server's field order is not kept.
type StreamEntry struct {
	ID     string
	Fields map[string]string
}

// XRange returns entries between start and end (inclusive), typically
// StreamIDRangeStart/StreamIDRangeEnd for an unbounded scan. count <= 0
// means no COUNT is sent.
func (c *Client) XRange(ctx context.Context, key, start, end string, count int64) ([]StreamEntry, error) {
	args := []Arg{Str(key), Str(start), Str(end)}
	if count > 0 {
		args = append(args, Str("COUNT"), Int(count))
	}
	reply, err := c.Do(ctx, "XRANGE", args...)
	if err != nil {
		return nil, err
	}
	arr, err := reply.AsArray()
	if err != nil {
		return nil, err
	}

	out := make([]StreamEntry, 0, len(arr))
	for _, entryReply := range arr {
		entryArr, err := entryReply.AsArray()
		if err != nil || len(entryArr) != 2 {
			return nil, resp.ErrInvalidState
		}
		id, err := entryArr[0].AsBulkString()
		if err != nil {
			return nil, err
		}
		fieldArr, err := entryArr[1].AsArray()
		if err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(fieldArr)/2)
		for i := 0; i+1 < len(fieldArr); i += 2 {
			k, err := fieldArr[i].AsBulkString()
			if err != nil {
				return nil, err
			}
			v, err := fieldArr[i+1].AsBulkString()
			if err != nil {
				return nil, err
			}
			fields[k] = v
		}
		out = append(out, StreamEntry{ID: id, Fields: fields})
	}
	return out, nil
}

// XDel removes one or more entries from a stream by ID, returning the
// count actually removed.
func (c *Client) XDel(ctx context.Context, key string, ids ...string) (int64, error) {
	args := make([]Arg, 0, len(ids)+1)
	args = append(args, Str(key))
	for _, id := range ids {
		args = append(args, Str(id))
	}
	reply, err := c.Do(ctx, "XDEL", args...)
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}
