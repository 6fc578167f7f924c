package command

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/komorebi/internal/ipc"
)

func TestServerQueryCommandRepliesAndCloses(t *testing.T) {
	m := newTestManager()
	eng := &Engine{
		Manager: m,
		Backend: newFakeBackend(),
		State: func() (interface{}, error) {
			return map[string]int{"monitors": m.Monitors().Len()}, nil
		},
	}
	srv := &Server{Engine: eng}
	path := filepath.Join(t.TempDir(), "komorebi.sock")
	if err := srv.Listen(path); err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	go srv.Serve()

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	c := ipc.NewConn(conn)

	if err := c.WriteMessage(&Command{Type: TypeQueryState}); err != nil {
		t.Fatal(err)
	}

	var resp Response
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := c.ReadMessage(&resp); err != nil {
		t.Fatalf("expected a reply to a query command, got error: %v", err)
	}
	if resp.Status != "OK" {
		t.Fatalf("expected OK status, got %q (error=%q)", resp.Status, resp.Error)
	}

	// The server closes the connection after a query reply.
	buf := make([]byte, 1)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Read(buf); err == nil {
		t.Fatal("expected connection to be closed after query reply")
	}
}

func TestServerMutatingCommandGetsNoReplyAndConnectionStaysOpen(t *testing.T) {
	m := newTestManager()
	eng := &Engine{Manager: m, Backend: newFakeBackend()}
	eng.GlobalState = func() (interface{}, error) { return m.IsPaused(), nil }
	srv := &Server{Engine: eng}
	path := filepath.Join(t.TempDir(), "komorebi.sock")
	if err := srv.Listen(path); err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	go srv.Serve()

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	c := ipc.NewConn(conn)

	if err := c.WriteMessage(&Command{Type: TypeTogglePause}); err != nil {
		t.Fatal(err)
	}

	// A second command on the same connection must still be accepted,
	// proving the server kept reading instead of closing after the
	// first (non-query) command.
	if err := c.WriteMessage(&Command{Type: TypeQueryGlobalState}); err != nil {
		t.Fatal(err)
	}

	var resp Response
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := c.ReadMessage(&resp); err != nil {
		t.Fatalf("expected a reply to the query command: %v", err)
	}
	if resp.Status != "OK" {
		t.Fatalf("expected OK status, got %q", resp.Status)
	}
}
