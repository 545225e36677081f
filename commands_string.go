// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import "context"

// Get returns a key's string value and whether it existed.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	reply, err := c.Do(ctx, "GET", Str(key))
	if err != nil {
		return "", false, err
	}
	if reply.IsNil() {
		return "", false, nil
	}
	s, err := reply.AsBulkString()
	return s, true, err
}

// Set stores a key's string value, replacing any previous value and TTL.
func (c *Client) Set(ctx context.Context, key, value string) error {
	reply, err := c.Do(ctx, "SET", Str(key), Str(value))
	if err != nil {
		return err
	}
	_, err = reply.AsSimpleString()
	return err
}

// SetEx stores a key's string value with a time-to-live in seconds.
func (c *Client) SetEx(ctx context.Context, key, value string, seconds int64) error {
	reply, err := c.Do(ctx, "SET", Str(key), Str(value), Str("EX"), Int(seconds))
	if err != nil {
		return err
	}
	_, err = reply.AsSimpleString()
	return err
}

// SetNX stores a key's string value only if it doesn't already exist,
// reporting whether the set happened.
func (c *Client) SetNX(ctx context.Context, key, value string) (bool, error) {
	reply, err := c.Do(ctx, "SET", Str(key), Str(value), Str("NX"))
	if err != nil {
		return false, err
	}
	return !reply.IsNil(), nil
}

// Incr atomically increments a key's integer value by one.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	reply, err := c.Do(ctx, "INCR", Str(key))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// IncrBy atomically increments a key's integer value by delta.
func (c *Client) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	reply, err := c.Do(ctx, "INCRBY", Str(key), Int(delta))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// Append appends value to a key's existing string, creating it if
// absent, and returns the resulting length.
func (c *Client) Append(ctx context.Context, key, value string) (int64, error) {
	reply, err := c.Do(ctx, "APPEND", Str(key), Str(value))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// MGet returns the values for multiple keys; a missing key's position
// holds an empty string and false-equivalent is not distinguishable
// here — callers needing null-vs-empty distinction should use Get.
func (c *Client) MGet(ctx context.Context, keys ...string) ([]string, error) {
	args := make([]Arg, len(keys))
	for i, k := range keys {
		args[i] = Str(k)
	}
	reply, err := c.Do(ctx, "MGET", args...)
	if err != nil {
		return nil, err
	}
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
