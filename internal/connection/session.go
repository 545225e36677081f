// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package connection implements the resilient, reconnecting TCP/TLS
// session: dial, post-connect handshake (AUTH, SELECT, CLIENT SETNAME),
// exponential backoff on establishment failure, and a PING-based
// reconnect probe. The connect/reconnect loop generalizes a
// connect-with-backoff-and-reconnect pattern onto a RESP2 command
// connection instead of a binary control channel.
package connection

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/nishisan-dev/respclient/internal/backoff"
	"github.com/nishisan-dev/respclient/internal/resp"
)

// Config carries everything the session needs to dial and authenticate:
// address, credentials, TLS, retry/backoff tuning, and optional QoS
// knobs.
type Config struct {
	Host string
	Port int

	TLSConfig *tls.Config // nil disables TLS

	Username string
	Password string
	DB       int
	Name     string // CLIENT SETNAME

	MaxRetryCount int // default 10; 0 disables transport-level retry
	Backoff       backoff.Policy
	DialTimeout   time.Duration

	DSCP                string // optional QoS marking, e.g. "EF"
	MaxWriteBytesPerSec int64  // optional write-side throttle; 0 disables
}

func (c *Config) setDefaults() {
	if c.MaxRetryCount == 0 {
		c.MaxRetryCount = 10
	}
	if c.Backoff == nil {
		c.Backoff = backoff.Default()
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
}

// Session owns a single socket to the server. It is mutably owned by
// exactly one executor (mux, pipeline or subscription) at a time — a
// connection's reader/writer halves must never be used by two executors
// concurrently, which is the caller's responsibility, not enforced here
// beyond the internal mutex guarding state transitions.
type Session struct {
	cfg    Config
	logger *slog.Logger
	dscp   int

	mu         sync.Mutex
	conn       net.Conn
	reader     *resp.Reader
	writer     *bufferedFlusher
	closed     bool
	connected  bool
	retryCount int
}

// bufferedFlusher is the minimal io.Writer the codec needs for a single
// buffered frame write; throttling (if configured) wraps the raw conn
// underneath it.
type bufferedFlusher struct {
	io.Writer
}

// New constructs a disconnected Session. Call Connect before use.
func New(cfg Config, logger *slog.Logger) (*Session, error) {
	cfg.setDefaults()
	dscp, err := ParseDSCP(cfg.DSCP)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cfg:    cfg,
		logger: logger.With("component", "connection"),
		dscp:   dscp,
	}, nil
}

// Connect establishes the socket and performs the handshake protocol:
// AUTH (if credentials set) -> SELECT (if db != 0) -> CLIENT SETNAME (if
// name set). On a transport error during establishment, the retry
// counter increments and the attempt is repeated after a backoff delay,
// up to cfg.MaxRetryCount; authentication failure is terminal and is
// never retried.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return resp.ErrConnectionClosed
	}
	s.mu.Unlock()

	for {
		err := s.dial(ctx)
		if err == nil {
			s.mu.Lock()
			s.retryCount = 0
			s.mu.Unlock()
			return nil
		}
		if errors.Is(err, resp.ErrAuthentication) {
			return err
		}

		s.mu.Lock()
		s.retryCount++
		attempt := s.retryCount
		max := s.cfg.MaxRetryCount
		s.mu.Unlock()

		if attempt > max {
			s.mu.Lock()
			s.retryCount = 0
			s.mu.Unlock()
			return err
		}

		delay := s.cfg.Backoff(attempt - 1)
		s.logger.Warn("connect failed, retrying", "error", err, "attempt", attempt, "max", max, "delay", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// dial performs one establishment attempt: TCP/TLS dial, then the
// AUTH/SELECT/CLIENT SETNAME handshake. It does not retry.
func (s *Session) dial(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.cfg.DialTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}

	var conn net.Conn = rawConn
	if s.cfg.TLSConfig != nil {
		tlsCfg := s.cfg.TLSConfig.Clone()
		if tlsCfg.ServerName == "" {
			tlsCfg.ServerName = s.cfg.Host
		}
		tlsConn := tls.Client(rawConn, tlsCfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			rawConn.Close()
			return fmt.Errorf("TLS handshake with %s: %w", addr, err)
		}
		conn = tlsConn
	}

	if s.dscp != 0 {
		if err := applyDSCP(conn, s.dscp); err != nil {
			s.logger.Warn("failed to apply DSCP marking", "error", err)
		}
	}

	reader := resp.NewReader(conn)
	var w io.Writer = conn
	if s.cfg.MaxWriteBytesPerSec > 0 {
		w = newThrottledWriter(ctx, conn, s.cfg.MaxWriteBytesPerSec)
	}
	writer := &bufferedFlusher{Writer: w}

	if err := s.handshake(reader, writer); err != nil {
		conn.Close()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.reader = reader
	s.writer = writer
	s.connected = true
	s.mu.Unlock()

	s.logger.Info("connected", "addr", addr, "tls", s.cfg.TLSConfig != nil)
	return nil
}

// handshake runs AUTH, SELECT and CLIENT SETNAME in order, each only if
// configured. An AUTH error reply is translated to ErrAuthentication and
// is terminal — it bypasses the caller's retry loop.
func (s *Session) handshake(r *resp.Reader, w io.Writer) error {
	if s.cfg.Password != "" {
		args := []resp.Arg{resp.Str(s.cfg.Password)}
		if s.cfg.Username != "" {
			args = []resp.Arg{resp.Str(s.cfg.Username), resp.Str(s.cfg.Password)}
		}
		if _, err := roundTrip(r, w, resp.NewCommand("AUTH", args...)); err != nil {
			if _, ok := resp.IsErrorReply(err); ok {
				return fmt.Errorf("%w: %v", resp.ErrAuthentication, err)
			}
			return err
		}
	}

	if s.cfg.DB != 0 {
		if _, err := roundTrip(r, w, resp.NewCommand("SELECT", resp.Int(int64(s.cfg.DB)))); err != nil {
			return fmt.Errorf("SELECT %d: %w", s.cfg.DB, err)
		}
	}

	if s.cfg.Name != "" {
		if _, err := roundTrip(r, w, resp.NewCommand("CLIENT", resp.Str("SETNAME"), resp.Str(s.cfg.Name))); err != nil {
			return fmt.Errorf("CLIENT SETNAME %s: %w", s.cfg.Name, err)
		}
	}

	return nil
}

// roundTrip sends one command and waits for its reply, translating an
// Error reply frame into an *resp.ErrorReply. Used only for the
// handshake and the reconnect PING probe, where request/response
// correlation is always 1:1.
func roundTrip(r *resp.Reader, w io.Writer, cmd resp.Command) (resp.Reply, error) {
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

// Reconnect probes the current connection with a PING; if the probe
// fails, the connection is closed (ignoring errors from an already-dead
// socket) and a fresh Connect cycle is run. Called by the executors when
// they observe a retriable transport fault on a read or write.
func (s *Session) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return resp.ErrConnectionClosed
	}

	if s.ping() == nil {
		return nil
	}

	s.mu.Lock()
	conn := s.conn
	s.connected = false
	s.conn = nil
	s.reader = nil
	s.writer = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	return s.Connect(ctx)
}

// ping issues a PING against the live connection without going through
// the retry loop; used only to test liveness before declaring a
// reconnect necessary.
func (s *Session) ping() error {
	s.mu.Lock()
	r, w, connected := s.reader, s.writer, s.connected
	s.mu.Unlock()
	if !connected || r == nil || w == nil {
		return resp.ErrConnectionClosed
	}
	_, err := roundTrip(r, w, resp.NewCommand("PING"))
	return err
}

// Close idempotently tears down the socket and marks the Session closed,
// so later Connect and Reconnect calls fail with ErrConnectionClosed. A
// second call is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.connected = false
	conn := s.conn
	s.conn = nil
	s.reader = nil
	s.writer = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("closing connection: %w", err)
	}
	return nil
}

// Reader returns the connection's decode-side reader. The caller must
// hold whatever external coordination is required to ensure only one
// goroutine reads at a time.
func (s *Session) Reader() *resp.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader
}

// Writer returns the connection's encode-side writer.
func (s *Session) Writer() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer
}

// IsConnected reports whether the session currently has a live socket.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
