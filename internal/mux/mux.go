// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package mux implements the multiplexing command executor: a single
// FIFO queue of in-flight commands drained by one goroutine per
// connection, reply order tracked strictly against submission order.
// The drain-loop-plus-reconnect shape generalizes a fixed
// read-loop-with-reconnect-on-fault pattern onto an arbitrary stream of
// caller-submitted commands instead of a fixed control protocol.
package mux

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nishisan-dev/respclient/internal/connection"
	"github.com/nishisan-dev/respclient/internal/resp"
)

// call is one queued command awaiting its reply.
type call struct {
	cmd    resp.Command
	result chan<- callResult
}

type callResult struct {
	reply resp.Reply
	err   error
}

// Multiplexer serializes command submission onto a single connection,
// matching replies to callers strictly in submission order (the FIFO
// correlation invariant of a single-connection command stream), and
// transparently reconnects and reissues the queue head when it observes
// a retriable transport fault.
type Multiplexer struct {
	sess   *connection.Session
	logger *slog.Logger

	mu      sync.Mutex
	pending *list.List // of *call not yet issued, oldest at Front; the in-flight call has been popped
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// New constructs a Multiplexer over an already-constructed (but not
// necessarily yet connected) Session and starts its drain loop.
func New(sess *connection.Session, logger *slog.Logger) *Multiplexer {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Multiplexer{
		sess:    sess,
		logger:  logger.With("component", "mux"),
		pending: list.New(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go m.drainLoop()
	return m
}

// Do submits cmd and blocks until its reply arrives, the multiplexer is
// closed, or ctx is canceled. Replies are delivered strictly in the
// order commands were submitted, even across a reconnect.
func (m *Multiplexer) Do(ctx context.Context, cmd resp.Command) (resp.Reply, error) {
	resultCh := make(chan callResult, 1)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return resp.Reply{}, resp.ErrConnectionClosed
	}
	m.pending.PushBack(&call{cmd: cmd, result: resultCh})
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}

	select {
	case res := <-resultCh:
		return res.reply, res.err
	case <-ctx.Done():
		return resp.Reply{}, ctx.Err()
	case <-m.done:
		return resp.Reply{}, resp.ErrConnectionClosed
	}
}

// Close stops the drain loop and fails every still-pending call with
// ErrConnectionClosed.
func (m *Multiplexer) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	pending := m.drainPendingLocked()
	m.mu.Unlock()

	close(m.done)
	for _, c := range pending {
		c.result <- callResult{err: resp.ErrConnectionClosed}
	}
	return m.sess.Close()
}

func (m *Multiplexer) drainPendingLocked() []*call {
	out := make([]*call, 0, m.pending.Len())
	for e := m.pending.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*call))
	}
	m.pending.Init()
	return out
}

// drainLoop is the single goroutine that ever writes to or reads from
// the session. It pops the queue head, writes the command, reads the
// reply, and resolves the caller — reissuing the same head command
// across a reconnect if the fault that interrupted it was retriable. A
// reconnect that itself fails only rejects the one call it was serving;
// the loop keeps draining the queue for subsequent submissions, so a
// later, successful reconnect resumes normal operation.
func (m *Multiplexer) drainLoop() {
	for {
		select {
		case <-m.done:
			return
		case <-m.wake:
		}

		for {
			c, ok := m.popHead()
			if !ok {
				break
			}
			reply, err := m.issue(c.cmd)
			if err != nil && resp.IsRetriable(err) {
				if rerr := m.sess.Reconnect(context.Background()); rerr != nil {
					m.logger.Error("reconnect failed", "error", rerr)
					c.result <- callResult{err: fmt.Errorf("reconnecting after %v: %w", err, rerr)}
					continue
				}
				reply, err = m.issue(c.cmd)
			}
			c.result <- callResult{reply: reply, err: err}
		}
	}
}

// issue performs one write+read round trip for a single command against
// the current connection.
func (m *Multiplexer) issue(cmd resp.Command) (resp.Reply, error) {
	w := m.sess.Writer()
	r := m.sess.Reader()
	if w == nil || r == nil {
		return resp.Reply{}, resp.ErrConnectionClosed
	}
	if err := resp.Encode(w, cmd); err != nil {
		return resp.Reply{}, err
	}
	reply, err := resp.Decode(r)
	if err != nil {
		return resp.Reply{}, err
	}
	if reply.Kind == resp.KindError {
		return resp.Reply{}, resp.NewErrorReply(reply.Str)
	}
	return reply, nil
}

// popHead removes and returns the oldest pending call without resolving
// it, leaving it off the queue while issue/reissue is attempted.
func (m *Multiplexer) popHead() (*call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false
	}
	e := m.pending.Front()
	if e == nil {
		return nil, false
	}
	m.pending.Remove(e)
	return e.Value.(*call), true
}
