// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package respclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nishisan-dev/respclient/internal/resp"
	"github.com/nishisan-dev/respclient/internal/resptest"
)

func TestClient_SubscribeAndReceiveMessage(t *testing.T) {
	handler := func(ctx context.Context, conn net.Conn) {
		defer conn.Close()
		r := resp.NewReader(conn)
		if _, err := resptest.ReadCommandWith(r); err != nil {
			return
		}
		conn.Write([]byte("*3\r\n$9\r\nsubscribe\r\n$4\r\nnews\r\n:1\r\n"))
		conn.Write([]byte("*3\r\n$7\r\nmessage\r\n$4\r\nnews\r\n$5\r\nhello\r\n"))
		<-ctx.Done()
	}

	srv, err := resptest.Start(handler)
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	ps, err := c.Subscribe(context.Background(), "news")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer ps.Close()

	select {
	case msg := <-ps.Messages():
		if msg.Channel != "news" || string(msg.Payload) != "hello" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("never received pushed message")
	}
}

func TestClient_PSubscribeThenClose(t *testing.T) {
	handler := func(ctx context.Context, conn net.Conn) {
		defer conn.Close()
		r := resp.NewReader(conn)
		if _, err := resptest.ReadCommandWith(r); err != nil {
			return
		}
		conn.Write([]byte("*3\r\n$10\r\npsubscribe\r\n$5\r\nnews.\r\n:1\r\n"))
		<-ctx.Done()
	}

	srv, err := resptest.Start(handler)
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	ps, err := c.PSubscribe(context.Background(), "news.*")
	if err != nil {
		t.Fatalf("PSubscribe: %v", err)
	}

	if err := ps.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
