// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import "context"

// SAdd adds one or more members to a set and returns the count newly added.
func (c *Client) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	args := make([]Arg, 0, len(members)+1)
	args = append(args, Str(key))
	for _, m := range members {
		args = append(args, Str(m))
	}
	reply, err := c.Do(ctx, "SADD", args...)
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// SRem removes one or more members from a set, returning the count removed.
func (c *Client) SRem(ctx context.Context, key string, members ...string) (int64, error) {
	args := make([]Arg, 0, len(members)+1)
	args = append(args, Str(key))
	for _, m := range members {
		args = append(args, Str(m))
	}
	reply, err := c.Do(ctx, "SREM", args...)
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// SMembers returns every member of a set, in unspecified order.
func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	reply, err := c.Do(ctx, "SMEMBERS", Str(key))
	if err != nil {
		return nil, err
	}
	return bulkArrayToStrings(reply)
}

// SIsMember reports whether a value is a member of a set.
func (c *Client) SIsMember(ctx context.Context, key, member string) (bool, error) {
	reply, err := c.Do(ctx, "SISMEMBER", Str(key), Str(member))
	if err != nil {
		return false, err
	}
	n, err := reply.AsInteger()
	return n == 1, err
}

// SCard returns a set's cardinality.
func (c *Client) SCard(ctx context.Context, key string) (int64, error) {
	reply, err := c.Do(ctx, "SCARD", Str(key))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}
