// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package respclient is a RESP2 client for Redis-protocol servers: a
// resilient reconnecting connection, a multiplexing command executor,
// a batched/transactional pipeline, and a pub/sub subscription session.
package respclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/nishisan-dev/respclient/internal/backoff"
	"github.com/nishisan-dev/respclient/internal/config"
	"github.com/nishisan-dev/respclient/internal/connection"
	"github.com/nishisan-dev/respclient/internal/logging"
	"github.com/nishisan-dev/respclient/internal/mux"
	"github.com/nishisan-dev/respclient/internal/pipeline"
	"github.com/nishisan-dev/respclient/internal/resp"
	"github.com/nishisan-dev/respclient/internal/subscription"
)

// pubSubConnCounter gives each pub/sub connection a distinct debug-log
// identity within one Client; the primary multiplexed connection always
// uses "primary".
var pubSubConnCounter atomic.Uint64

// Options configures a Client: network address, credentials, retry
// policy, logging and optional QoS tuning. It is the exported alias of
// the internal YAML/URL-parseable options type, so callers can load it
// from a config file (config.Load) or a redis:// URL (ParseURL) as well
// as build it with Go literals.
type Options = config.Options

// ParseURL parses a redis:// or rediss:// connection string into Options.
func ParseURL(raw string) (Options, error) {
	opts, err := config.ParseURL(raw)
	if err != nil {
		return Options{}, err
	}
	return *opts, nil
}

// LoadOptions reads and validates a YAML options file.
func LoadOptions(path string) (Options, error) {
	opts, err := config.Load(path)
	if err != nil {
		return Options{}, err
	}
	return *opts, nil
}

// Client is a multiplexed RESP2 connection: commands submitted from any
// number of goroutines are serialized onto one socket and their replies
// are delivered in submission order, with transparent reconnect on a
// retriable transport fault.
type Client struct {
	opts    Options
	logger  *slog.Logger
	closers []io.Closer

	sess *connection.Session
	m    *mux.Multiplexer
}

// New constructs a Client, connects it, and starts its command
// multiplexer. The returned Client owns the connection until Close.
func New(ctx context.Context, opts Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logger, fileCloser := logging.New(opts.Logging.Level, opts.Logging.Format, opts.Logging.FilePath)

	maxWriteBps, err := opts.MaxWriteBytesPerSecRaw()
	if err != nil {
		return nil, err
	}
	tlsCfg, err := buildTLSConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("building TLS config: %w", err)
	}

	connLogger, connCloser, _, err := logging.NewConnectionLogger(logger, opts.Logging.DebugLogDir, "mux", "primary")
	if err != nil {
		return nil, fmt.Errorf("building connection debug log: %w", err)
	}

	sess, err := connection.New(connection.Config{
		Host:                opts.Network.Host,
		Port:                opts.Network.Port,
		TLSConfig:           tlsCfg,
		Username:            opts.Auth.Username,
		Password:            opts.Auth.Password,
		DB:                  opts.Network.DB,
		Name:                opts.Network.ClientName,
		MaxRetryCount:       opts.Retry.MaxAttempts,
		Backoff:             backoff.Exponential(opts.Retry.InitialDelay, opts.Retry.MaxDelay, opts.Retry.Multiplier, opts.Retry.Jitter),
		DialTimeout:         opts.Network.DialTimeout,
		DSCP:                opts.QoS.DSCP,
		MaxWriteBytesPerSec: maxWriteBps,
	}, connLogger)
	if err != nil {
		return nil, err
	}

	if err := sess.Connect(ctx); err != nil {
		return nil, err
	}

	c := &Client{
		opts:    opts,
		logger:  logger,
		closers: []io.Closer{fileCloser, connCloser},
		sess:    sess,
		m:       mux.New(sess, connLogger),
	}
	return c, nil
}

// Do issues an arbitrary command and returns its raw reply — the escape
// hatch for commands this package has no typed wrapper for.
func (c *Client) Do(ctx context.Context, name string, args ...resp.Arg) (resp.Reply, error) {
	return c.m.Do(ctx, resp.NewCommand(name, args...))
}

// Pipeline returns a new batched executor over this client's
// connection. tx wraps the eventual Flush in MULTI/EXEC. A Pipeline is
// single-owner: build and flush it from one goroutine at a time,
// independent of concurrent Do calls on the same Client — the
// underlying connection is still shared, so interleaving a Pipeline
// flush with concurrent Do calls is the caller's responsibility to
// avoid, since only one goroutine may read a connection at a time.
func (c *Client) Pipeline(tx bool) *Pipeline {
	return &Pipeline{p: pipeline.New(c.sess, tx, c.logger)}
}

// Subscribe opens a dedicated pub/sub connection and subscribes to the
// given channels. The returned PubSub never shares a connection with
// this Client's multiplexer.
func (c *Client) Subscribe(ctx context.Context, channels ...string) (*PubSub, error) {
	ps, err := c.newPubSub(ctx)
	if err != nil {
		return nil, err
	}
	if len(channels) > 0 {
		if err := ps.sub.Subscribe(ctx, channels...); err != nil {
			ps.Close()
			return nil, err
		}
	}
	return ps, nil
}

// PSubscribe opens a dedicated pub/sub connection and subscribes to the
// given glob patterns.
func (c *Client) PSubscribe(ctx context.Context, patterns ...string) (*PubSub, error) {
	ps, err := c.newPubSub(ctx)
	if err != nil {
		return nil, err
	}
	if len(patterns) > 0 {
		if err := ps.sub.PSubscribe(ctx, patterns...); err != nil {
			ps.Close()
			return nil, err
		}
	}
	return ps, nil
}

func (c *Client) newPubSub(ctx context.Context) (*PubSub, error) {
	maxWriteBps, err := c.opts.MaxWriteBytesPerSecRaw()
	if err != nil {
		return nil, err
	}
	tlsCfg, err := buildTLSConfig(c.opts)
	if err != nil {
		return nil, fmt.Errorf("building TLS config: %w", err)
	}

	connID := fmt.Sprintf("pubsub-%d", pubSubConnCounter.Add(1))
	connLogger, connCloser, _, err := logging.NewConnectionLogger(c.logger, c.opts.Logging.DebugLogDir, "subscription", connID)
	if err != nil {
		return nil, fmt.Errorf("building connection debug log: %w", err)
	}

	sess, err := connection.New(connection.Config{
		Host:                c.opts.Network.Host,
		Port:                c.opts.Network.Port,
		TLSConfig:           tlsCfg,
		Username:            c.opts.Auth.Username,
		Password:            c.opts.Auth.Password,
		DB:                  c.opts.Network.DB,
		Name:                c.opts.Network.ClientName,
		MaxRetryCount:       c.opts.Retry.MaxAttempts,
		Backoff:             backoff.Exponential(c.opts.Retry.InitialDelay, c.opts.Retry.MaxDelay, c.opts.Retry.Multiplier, c.opts.Retry.Jitter),
		DialTimeout:         c.opts.Network.DialTimeout,
		DSCP:                c.opts.QoS.DSCP,
		MaxWriteBytesPerSec: maxWriteBps,
	}, connLogger)
	if err != nil {
		connCloser.Close()
		return nil, err
	}
	if err := sess.Connect(ctx); err != nil {
		connCloser.Close()
		return nil, err
	}
	return &PubSub{sub: subscription.New(sess, connLogger), closer: connCloser}, nil
}

// Close stops the multiplexer, fails any pending call, and closes the
// connection along with any debug-log files opened for it.
func (c *Client) Close() error {
	err := c.m.Close()
	for _, closer := range c.closers {
		if closer != nil {
			closer.Close()
		}
	}
	return err
}
