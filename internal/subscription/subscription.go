// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package subscription implements the pub/sub session: a dedicated
// connection that tracks the caller's exact-channel and pattern
// subscription sets, replays them after a reconnect, and delivers
// pushed messages through a channel the caller ranges over. Its
// reconnect-then-replay shape is grounded in the alpaca market-data
// stream client's maintainConnection/connPinger/connReader split,
// adapted from a JSON streaming API onto RESP2 push frames.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nishisan-dev/respclient/internal/connection"
	"github.com/nishisan-dev/respclient/internal/resp"
)

// Message is one pushed pub/sub frame.
type Message struct {
	Pattern string // non-empty only for a pattern-subscription (pmessage) push
	Channel string
	Payload []byte
}

// Session owns a dedicated connection used exclusively for pub/sub — it
// never shares a connection with a Multiplexer or Pipeline, since
// SUBSCRIBE puts the connection into a mode where only a small set of
// commands is legal.
type Session struct {
	sess   *connection.Session
	logger *slog.Logger

	mu       sync.Mutex
	channels map[string]bool
	patterns map[string]bool
	closed   bool

	messages chan Message
	errs     chan error
	done     chan struct{}
}

// New constructs a subscription Session over an already-constructed
// Session and starts its read loop. Messages arrives pushed frames;
// Errs reports terminal failures (after retry is exhausted) and is
// closed alongside Messages when the session stops.
func New(sess *connection.Session, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		sess:     sess,
		logger:   logger.With("component", "subscription"),
		channels: make(map[string]bool),
		patterns: make(map[string]bool),
		messages: make(chan Message, 64),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// Messages returns the channel of pushed messages. It is closed when
// the session stops (Close, or an unrecoverable error).
func (s *Session) Messages() <-chan Message { return s.messages }

// Errs returns the channel that reports a terminal failure, if any.
func (s *Session) Errs() <-chan error { return s.errs }

// Subscribe adds channel names to the exact-match subscription set and
// issues SUBSCRIBE for all of them, including names already tracked.
func (s *Session) Subscribe(ctx context.Context, channels ...string) error {
	return s.updateSubscription(ctx, "SUBSCRIBE", s.channels, channels)
}

// Unsubscribe removes channel names from the exact-match set.
func (s *Session) Unsubscribe(ctx context.Context, channels ...string) error {
	return s.updateSubscription(ctx, "UNSUBSCRIBE", s.channels, channels)
}

// PSubscribe adds glob patterns to the pattern subscription set.
func (s *Session) PSubscribe(ctx context.Context, patterns ...string) error {
	return s.updateSubscription(ctx, "PSUBSCRIBE", s.patterns, patterns)
}

// PUnsubscribe removes glob patterns from the pattern subscription set.
func (s *Session) PUnsubscribe(ctx context.Context, patterns ...string) error {
	return s.updateSubscription(ctx, "PUNSUBSCRIBE", s.patterns, patterns)
}

func (s *Session) updateSubscription(ctx context.Context, name string, set map[string]bool, items []string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return resp.ErrSubscriptionClosed
	}
	w := s.sess.Writer()
	subscribing := name == "SUBSCRIBE" || name == "PSUBSCRIBE"
	for _, item := range items {
		if subscribing {
			set[item] = true
		} else {
			delete(set, item)
		}
	}
	s.mu.Unlock()

	if w == nil {
		return resp.ErrConnectionClosed
	}
	args := make([]resp.Arg, len(items))
	for i, item := range items {
		args[i] = resp.Str(item)
	}
	if err := resp.Encode(w, resp.NewCommand(name, args...)); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Close stops the read loop and releases the underlying connection.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	return s.sess.Close()
}

// readLoop is the sole reader of the subscription connection. On a
// retriable fault it reconnects and replays every tracked channel and
// pattern before resuming delivery — callers see a contiguous stream of
// Messages with a gap during the reconnect rather than a closed channel,
// except when retry is exhausted or the fault is terminal.
func (s *Session) readLoop() {
	defer close(s.messages)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		r := s.sess.Reader()
		if r == nil {
			if err := s.reconnectAndReplay(); err != nil {
				s.fail(err)
				return
			}
			continue
		}

		reply, err := resp.Decode(r)
		if err != nil {
			if !resp.IsRetriable(err) {
				s.fail(err)
				return
			}
			if rerr := s.reconnectAndReplay(); rerr != nil {
				s.fail(rerr)
				return
			}
			continue
		}

		msg, ok, err := decodePush(reply)
		if err != nil {
			s.logger.Warn("dropping malformed push frame", "error", err)
			continue
		}
		if !ok {
			continue
		}

		select {
		case s.messages <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *Session) reconnectAndReplay() error {
	if err := s.sess.Reconnect(context.Background()); err != nil {
		return err
	}

	s.mu.Lock()
	channels := keysOf(s.channels)
	patterns := keysOf(s.patterns)
	s.mu.Unlock()

	w := s.sess.Writer()
	if w == nil {
		return resp.ErrConnectionClosed
	}
	if len(channels) > 0 {
		args := strArgs(channels)
		if err := resp.Encode(w, resp.NewCommand("SUBSCRIBE", args...)); err != nil {
			return fmt.Errorf("replaying subscriptions: %w", err)
		}
	}
	if len(patterns) > 0 {
		args := strArgs(patterns)
		if err := resp.Encode(w, resp.NewCommand("PSUBSCRIBE", args...)); err != nil {
			return fmt.Errorf("replaying pattern subscriptions: %w", err)
		}
	}
	return nil
}

func (s *Session) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
	close(s.errs)
}

func keysOf(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func strArgs(items []string) []resp.Arg {
	args := make([]resp.Arg, len(items))
	for i, item := range items {
		args[i] = resp.Str(item)
	}
	return args
}

// decodePush interprets one decoded Reply as a pub/sub push frame. Array
// replies with first element "subscribe"/"unsubscribe"/"psubscribe"/
// "punsubscribe" are subscription-count acknowledgements, not messages,
// and are swallowed (ok=false). "message" and "pmessage" pushes become a
// Message.
func decodePush(reply resp.Reply) (Message, bool, error) {
	arr, err := reply.AsArray()
	if err != nil {
		return Message{}, false, err
	}
	if len(arr) == 0 {
		return Message{}, false, nil
	}
	kind, err := arr[0].AsBulkString()
	if err != nil {
		return Message{}, false, err
	}

	switch kind {
	case "message":
		if len(arr) != 3 {
			return Message{}, false, fmt.Errorf("%w: malformed message push", resp.ErrInvalidState)
		}
		channel, err := arr[1].AsBulkString()
		if err != nil {
			return Message{}, false, err
		}
		payload, err := arr[2].AsBulk()
		if err != nil {
			return Message{}, false, err
		}
		return Message{Channel: channel, Payload: payload}, true, nil

	case "pmessage":
		if len(arr) != 4 {
			return Message{}, false, fmt.Errorf("%w: malformed pmessage push", resp.ErrInvalidState)
		}
		pattern, err := arr[1].AsBulkString()
		if err != nil {
			return Message{}, false, err
		}
		channel, err := arr[2].AsBulkString()
		if err != nil {
			return Message{}, false, err
		}
		payload, err := arr[3].AsBulk()
		if err != nil {
			return Message{}, false, err
		}
		return Message{Pattern: pattern, Channel: channel, Payload: payload}, true, nil

	case "subscribe", "unsubscribe", "psubscribe", "punsubscribe":
		return Message{}, false, nil

	default:
		return Message{}, false, nil
	}
}
