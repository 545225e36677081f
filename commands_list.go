// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import "context"

// LPush prepends one or more values to a list and returns its new length.
func (c *Client) LPush(ctx context.Context, key string, values ...string) (int64, error) {
	return c.listPush(ctx, "LPUSH", key, values)
}

// RPush appends one or more values to a list and returns its new length.
func (c *Client) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	return c.listPush(ctx, "RPUSH", key, values)
}

func (c *Client) listPush(ctx context.Context, cmd, key string, values []string) (int64, error) {
	args := make([]Arg, 0, len(values)+1)
	args = append(args, Str(key))
	for _, v := range values {
		args = append(args, Str(v))
	}
	reply, err := c.Do(ctx, cmd, args...)
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// LPop removes and returns the first element of a list, and whether the
// list was non-empty.
func (c *Client) LPop(ctx context.Context, key string) (string, bool, error) {
	reply, err := c.Do(ctx, "LPOP", Str(key))
	if err != nil {
		return "", false, err
	}
	if reply.IsNil() {
		return "", false, nil
	}
	s, err := reply.AsBulkString()
	return s, true, err
}

// RPop removes and returns the last element of a list, and whether the
// list was non-empty.
func (c *Client) RPop(ctx context.Context, key string) (string, bool, error) {
	reply, err := c.Do(ctx, "RPOP", Str(key))
	if err != nil {
		return "", false, err
	}
	if reply.IsNil() {
		return "", false, nil
	}
	s, err := reply.AsBulkString()
	return s, true, err
}

// LRange returns the elements of a list between start and stop
// (inclusive), supporting negative indices counted from the end.
func (c *Client) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	reply, err := c.Do(ctx, "LRANGE", Str(key), Int(start), Int(stop))
	if err != nil {
		return nil, err
	}
	return bulkArrayToStrings(reply)
}

// LLen returns a list's length.
func (c *Client) LLen(ctx context.Context, key string) (int64, error) {
	reply, err := c.Do(ctx, "LLEN", Str(key))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

func bulkArrayToStrings(reply Reply) ([]string, error) {
	arr, err := reply.AsArray()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(arr))
	for i, r := range arr {
		if r.IsNil() {
			continue
		}
		out[i], err = r.AsBulkString()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
