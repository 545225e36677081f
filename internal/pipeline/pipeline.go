// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package pipeline implements the batched/transactional executor: a
// caller queues commands, then Flush sends them all in one buffered
// write (resp.EncodeBatch) and returns one reply per queued command in
// the same order, optionally wrapped in MULTI/EXEC framing. The
// queue-then-flush-as-one-write shape generalizes an accumulate-then-
// drain-under-one-lock batching discipline from byte chunks to RESP2
// commands.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nishisan-dev/respclient/internal/connection"
	"github.com/nishisan-dev/respclient/internal/resp"
)

// Pipeline accumulates commands and flushes them as one batch. It is not
// safe for concurrent Queue/Flush calls from multiple goroutines — a
// single caller builds a batch serially.
type Pipeline struct {
	sess   *connection.Session
	logger *slog.Logger
	tx     bool

	mu    sync.Mutex
	queue []resp.Command
}

// New constructs a Pipeline over an already-connected Session. If tx is
// true, Flush wraps the queued commands in MULTI/EXEC so the server
// executes them atomically.
func New(sess *connection.Session, tx bool, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{sess: sess, tx: tx, logger: logger.With("component", "pipeline")}
}

// Queue appends cmd to the pending batch without sending anything.
func (p *Pipeline) Queue(cmd resp.Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, cmd)
}

// Len reports how many commands are currently queued.
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Flush sends every queued command in one buffered write and returns
// their replies in submission order. The queue is cleared whether or
// not Flush succeeds. An empty queue flushes to an empty, nil-error
// result without touching the connection.
func (p *Pipeline) Flush(ctx context.Context) ([]resp.Reply, error) {
	p.mu.Lock()
	cmds := p.queue
	p.queue = nil
	p.mu.Unlock()

	if len(cmds) == 0 {
		return nil, nil
	}

	w := p.sess.Writer()
	r := p.sess.Reader()
	if w == nil || r == nil {
		return nil, resp.ErrConnectionClosed
	}

	toSend := cmds
	if p.tx {
		toSend = make([]resp.Command, 0, len(cmds)+2)
		toSend = append(toSend, resp.NewCommand("MULTI"))
		toSend = append(toSend, cmds...)
		toSend = append(toSend, resp.NewCommand("EXEC"))
	}

	if err := resp.EncodeBatch(w, toSend); err != nil {
		return nil, fmt.Errorf("flushing %d commands: %w", len(cmds), err)
	}

	if p.tx {
		return p.readTxReplies(r, len(cmds))
	}
	return p.readPlainReplies(r, len(cmds))
}

// readPlainReplies reads exactly n replies, preserving positional
// correspondence with the commands that were queued — an individual
// command's server-side Error is carried as a value at its position
// rather than aborting the whole batch.
func (p *Pipeline) readPlainReplies(r *resp.Reader, n int) ([]resp.Reply, error) {
	replies := make([]resp.Reply, n)
	for i := 0; i < n; i++ {
		reply, err := resp.Decode(r)
		if err != nil {
			return replies[:i], fmt.Errorf("reading reply %d/%d: %w", i+1, n, err)
		}
		replies[i] = reply
	}
	return replies, nil
}

// readTxReplies consumes MULTI's +OK, each queued command's +QUEUED
// acknowledgement, and EXEC's reply array, returning the array elements.
// If the server aborted the transaction (e.g. via a WATCH mismatch),
// EXEC replies with a null array and readTxReplies returns a single
// ErrInvalidState for the whole batch.
func (p *Pipeline) readTxReplies(r *resp.Reader, n int) ([]resp.Reply, error) {
	multiReply, err := resp.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("reading MULTI ack: %w", err)
	}
	if multiReply.Kind == resp.KindError {
		return nil, resp.NewErrorReply(multiReply.Str)
	}

	for i := 0; i < n; i++ {
		queuedReply, err := resp.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("reading QUEUED ack %d/%d: %w", i+1, n, err)
		}
		if queuedReply.Kind == resp.KindError {
			return nil, resp.NewErrorReply(queuedReply.Str)
		}
	}

	execReply, err := resp.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("reading EXEC reply: %w", err)
	}
	if execReply.Kind == resp.KindError {
		return nil, resp.NewErrorReply(execReply.Str)
	}
	if execReply.IsNil() {
		return nil, fmt.Errorf("%w: transaction aborted, EXEC returned a null array", resp.ErrInvalidState)
	}
	arr, err := execReply.AsArray()
	if err != nil {
		return nil, err
	}
	return arr, nil
}
