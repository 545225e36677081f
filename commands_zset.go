// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import (
	"context"
	"strconv"
)

// ZAdd adds a member with the given score to a sorted set, returning the
// count of newly added members (updates to an existing member's score
// aren't counted).
func (c *Client) ZAdd(ctx context.Context, key string, score float64, member string) (int64, error) {
	reply, err := c.Do(ctx, "ZADD", Str(key), Str(strconv.FormatFloat(score, 'f', -1, 64)), Str(member))
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}

// ZScore returns a member's score and whether it was present.
func (c *Client) ZScore(ctx context.Context, key, member string) (float64, bool, error) {
	reply, err := c.Do(ctx, "ZSCORE", Str(key), Str(member))
	if err != nil {
		return 0, false, err
	}
	if reply.IsNil() {
		return 0, false, nil
	}
	s, err := reply.AsBulkString()
	if err != nil {
		return 0, false, err
	}
	score, err := strconv.ParseFloat(s, 64)
	return score, true, err
}

// ZRange returns members between start and stop (inclusive) ordered by
// score ascending, supporting negative indices counted from the end.
func (c *Client) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	reply, err := c.Do(ctx, "ZRANGE", Str(key), Int(start), Int(stop))
	if err != nil {
		return nil, err
	}
	return bulkArrayToStrings(reply)
}

// ZRangeWithScores is ZRange but also returns each member's score.
func (c *Client) ZRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ZMember, error) {
	reply, err := c.Do(ctx, "ZRANGE", Str(key), Int(start), Int(stop), Str("WITHSCORES"))
	if err != nil {
		return nil, err
	}
	arr, err := reply.AsArray()
	if err != nil {
		return nil, err
	}
	out := make([]ZMember, 0, len(arr)/2)
	for i := 0; i+1 < len(arr); i += 2 {
		member, err := arr[i].AsBulkString()
		if err != nil {
			return nil, err
		}
		scoreStr, err := arr[i+1].AsBulkString()
		if err != nil {
			return nil, err
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, ZMember{Member: member, Score: score})
	}
	return out, nil
}

// ZMember is one member/score pair from a sorted set range.
type ZMember struct {
	Member string
	Score  float64
}

// ZRem removes one or more members from a sorted set, returning the count
// removed.
func (c *Client) ZRem(ctx context.Context, key string, members ...string) (int64, error) {
	args := make([]Arg, 0, len(members)+1)
	args = append(args, Str(key))
	for _, m := range members {
		args = append(args, Str(m))
	}
	reply, err := c.Do(ctx, "ZREM", args...)
	if err != nil {
		return 0, err
	}
	return reply.AsInteger()
}
