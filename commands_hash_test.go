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

func TestClient_HGetAll(t *testing.T) {
	srv, err := resptest.Start(scriptedHandler(map[string]func(net.Conn){
		"HGETALL": func(c net.Conn) {
			resptest.WriteArray(c, 4)
			resptest.WriteBulk(c, "field1")
			resptest.WriteBulk(c, "value1")
			resptest.WriteBulk(c, "field2")
			resptest.WriteBulk(c, "value2")
		},
	}))
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	got, err := c.HGetAll(context.Background(), "myhash")
	if err != nil {
		t.Fatalf("HGetAll: %v", err)
	}
	want := map[string]string{"field1": "value1", "field2": "value2"}
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(got))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %q: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestClient_HExists(t *testing.T) {
	srv, err := resptest.Start(scriptedHandler(map[string]func(net.Conn){
		"HEXISTS": func(c net.Conn) { resptest.WriteInteger(c, 0) },
	}))
	if err != nil {
		t.Fatalf("resptest.Start: %v", err)
	}
	defer srv.Close()

	c := newTestClient(t, srv)
	exists, err := c.HExists(context.Background(), "myhash", "missing")
	if err != nil {
		t.Fatalf("HExists: %v", err)
	}
	if exists {
		t.Error("expected exists=false")
	}
}
