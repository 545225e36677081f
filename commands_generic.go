// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import "context"

// Ping checks connectivity. An empty message sends a bare PING.
func (c *Client) Ping(ctx context.Context, message string) (string, error) {
	var reply Reply
	var err error
	if message == "" {
		reply, err = c.Do(ctx, "PING")
	} else {
		reply, err = c.Do(ctx, "PING", Str(message))
	}
	if err != nil {
		return "", err
	}
	return replyToString(reply)
}

// Del removes one or more keys and returns the number deleted.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	args := make([]Arg, len(keys))
	for i, k := range keys {
		args[i] = Str(k)
	}
	reply, err := c.Do(ctx, "DEL", args...)
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// Exists reports how many of the given keys exist.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	args := make([]Arg, len(keys))
	for i, k := range keys {
		args[i] = Str(k)
	}
	reply, err := c.Do(ctx, "EXISTS", args...)
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// Expire sets a key's time-to-live in seconds. Returns false if the key
// doesn't exist.
func (c *Client) Expire(ctx context.Context, key string, seconds int64) (bool, error) {
	reply, err := c.Do(ctx, "EXPIRE", Str(key), Int(seconds))
	if err != nil {
		return false, err
	}
	n, err := reply.AsInteger()
	return n == 1, err
}

// TTL returns a key's remaining time-to-live in seconds, -1 if it has
// none, or -2 if the key doesn't exist.
func (c *Client) TTL(ctx context.Context, key string) (int64, error) {
	reply, err := c.Do(ctx, "TTL", Str(key))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// Publish sends message to a channel and returns the number of
// subscribers that received it.
func (c *Client) Publish(ctx context.Context, channel string, message Arg) (int64, error) {
	reply, err := c.Do(ctx, "PUBLISH", Str(channel), message)
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// replyToString renders a SimpleString or Bulk reply as text — some
// commands (PING, SET) reply with either shape depending on arguments.
func replyToString(reply Reply) (string, error) {
	if s, err := reply.AsSimpleString(); err == nil {
		return s, nil
	}
	return reply.AsBulkString()
}
