// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import (
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nishisan-dev/respclient/internal/resptest"
)

func hostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("splitting addr %q: %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port %q: %v", portStr, err)
	}
	return host, port
}

func newTestClient(t *testing.T, srv *resptest.Server) *Client {
	t.Helper()
	host, port := hostPort(t, srv.Addr())
	var o Options
	o.Network.Host = host
	o.Network.Port = port
	o.Network.DialTimeout = 2 * time.Second
	o.Retry.MaxAttempts = 1
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	c, err := New(context.Background(), o)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func okHandler(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	for {
		args, err := resptest.ReadCommand(conn)
		if err != nil {
			return
		}
		switch strings.ToUpper(args[0]) {
		case "PING":
			resptest.WriteSimpleString(conn, "PONG")
		default:
			resptest.WriteSimpleString(conn, "OK")
		}
	}
}

func TestClient_PingBare(t *testing.T) {
	srv, err := resptest.Start(okHandler)
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	pong, err := c.Ping(context.Background(), "")
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestClient_DoArbitraryCommand(t *testing.T) {
	srv, err := resptest.Start(okHandler)
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	reply, err := c.Do(context.Background(), "FLUSHALL")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	s, err := reply.AsSimpleString()
	if err != nil || s != "OK" {
		t.Errorf("expected OK, got %q (err %v)", s, err)
	}
}

func TestClient_CloseStopsMultiplexer(t *testing.T) {
	srv, err := resptest.Start(okHandler)
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.Do(context.Background(), "PING"); err == nil {
		t.Fatal("expected error after Close")
	}
}
