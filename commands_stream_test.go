// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import (
	"context"
	"net"
	"testing"

	"github.com/nishisan-dev/respclient/internal/resptest"
)

func TestClient_XAdd(t *testing.T) {
	srv, err := resptest.Start(scriptedHandler(map[string]func(net.Conn){
		"XADD": func(c net.Conn) { resptest.WriteBulk(c, "1234-0") },
	}))
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	id, err := c.XAdd(context.Background(), "stream", StreamIDAuto, map[string]string{"field": "value"})
	if err != nil {
		t.Fatalf("XAdd: %v", err)
	}
	if id != "1234-0" {
		t.Errorf("expected %q, got %q", "1234-0", id)
	}
}

func TestClient_XLen(t *testing.T) {
	srv, err := resptest.Start(scriptedHandler(map[string]func(net.Conn){
		"XLEN": func(c net.Conn) { resptest.WriteInteger(c, 4) },
	}))
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	n, err := c.XLen(context.Background(), "stream")
	if err != nil {
		t.Fatalf("XLen: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4, got %d", n)
	}
}

func TestClient_XRange(t *testing.T) {
	srv, err := resptest.Start(scriptedHandler(map[string]func(net.Conn){
		"XRANGE": func(c net.Conn) {
			resptest.WriteArray(c, 1)
			resptest.WriteArray(c, 2)
			resptest.WriteBulk(c, "1-0")
			resptest.WriteArray(c, 2)
			resptest.WriteBulk(c, "field")
			resptest.WriteBulk(c, "value")
		},
	}))
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	entries, err := c.XRange(context.Background(), "stream", StreamIDRangeStart, StreamIDRangeEnd, 0)
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != "1-0" || entries[0].Fields["field"] != "value" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestClient_XDel(t *testing.T) {
	srv, err := resptest.Start(scriptedHandler(map[string]func(net.Conn){
		"XDEL": func(c net.Conn) { resptest.WriteInteger(c, 1) },
	}))
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	n, err := c.XDel(context.Background(), "stream", "1-0")
	if err != nil {
		t.Fatalf("XDel: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
}
