// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import "context"

// HSet sets one field on a hash and returns the number of new fields added.
func (c *Client) HSet(ctx context.Context, key, field, value string) (int64, error) {
	reply, err := c.Do(ctx, "HSET", Str(key), Str(field), Str(value))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// HGet returns a hash field's value and whether it existed.
func (c *Client) HGet(ctx context.Context, key, field string) (string, bool, error) {
	reply, err := c.Do(ctx, "HGET", Str(key), Str(field))
	if err != nil {
		return "", false, err
	}
	if reply.IsNil() {
		return "", false, nil
	}
	s, err := reply.AsBulkString()
	return s, true, err
}

// HDel removes one or more fields from a hash, returning the count removed.
func (c *Client) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	args := make([]Arg, 0, len(fields)+1)
	args = append(args, Str(key))
	for _, f := range fields {
		args = append(args, Str(f))
	}
	reply, err := c.Do(ctx, "HDEL", args...)
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// HGetAll returns every field/value pair in a hash.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	reply, err := c.Do(ctx, "HGETALL", Str(key))
	if err != nil {
		return nil, err
	}
	arr, err := reply.AsArray()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(arr)/2)
	for i := 0; i+1 < len(arr); i += 2 {
		field, err := arr[i].AsBulkString()
		if err != nil {
			return nil, err
		}
		value, err := arr[i+1].AsBulkString()
		if err != nil {
			return nil, err
		}
		out[field] = value
	}
	return out, nil
}

// HExists reports whether a hash field exists.
func (c *Client) HExists(ctx context.Context, key, field string) (bool, error) {
	reply, err := c.Do(ctx, "HEXISTS", Str(key), Str(field))
	if err != nil {
		return false, err
	}
	n, err := reply.AsInteger()
	return n == 1, err
}

// HIncrBy atomically increments a hash field's integer value by delta.
func (c *Client) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	reply, err := c.Do(ctx, "HINCRBY", Str(key), Str(field), Int(delta))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}
