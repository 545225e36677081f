// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import (
	"context"
	"io"

	"github.com/nishisan-dev/respclient/internal/subscription"
)

// Message is one pushed pub/sub frame. Pattern is non-empty only for a
// pattern-subscription (PSUBSCRIBE) delivery.
type Message = subscription.Message

// PubSub is a dedicated pub/sub connection, returned by Client.Subscribe
// and Client.PSubscribe. It never shares a connection with its parent
// Client's command multiplexer.
type PubSub struct {
	sub    *subscription.Session
	closer io.Closer
}

// Messages returns the channel of pushed messages. It is closed when
// the PubSub is closed or hits an unrecoverable error.
func (ps *PubSub) Messages() <-chan Message { return ps.sub.Messages() }

// Errs returns the channel that reports a terminal failure, if any.
func (ps *PubSub) Errs() <-chan error { return ps.sub.Errs() }

// Subscribe adds channel names to the exact-match subscription set.
func (ps *PubSub) Subscribe(ctx context.Context, channels ...string) error {
	return ps.sub.Subscribe(ctx, channels...)
}

// Unsubscribe removes channel names from the exact-match subscription set.
func (ps *PubSub) Unsubscribe(ctx context.Context, channels ...string) error {
	return ps.sub.Unsubscribe(ctx, channels...)
}

// PSubscribe adds glob patterns to the pattern subscription set.
func (ps *PubSub) PSubscribe(ctx context.Context, patterns ...string) error {
	return ps.sub.PSubscribe(ctx, patterns...)
}

// PUnsubscribe removes glob patterns from the pattern subscription set.
func (ps *PubSub) PUnsubscribe(ctx context.Context, patterns ...string) error {
	return ps.sub.PUnsubscribe(ctx, patterns...)
}

// Close stops message delivery and releases the underlying connection
// along with any debug-log file opened for it.
func (ps *PubSub) Close() error {
	err := ps.sub.Close()
	if ps.closer != nil {
		ps.closer.Close()
	}
	return err
}
