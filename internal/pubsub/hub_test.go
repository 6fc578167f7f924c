package pubsub

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/komorebi/internal/ipc"
)

func withTestRuntimeDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	old := os.Getenv("XDG_RUNTIME_DIR")
	os.Setenv("XDG_RUNTIME_DIR", dir)
	t.Cleanup(func() { os.Setenv("XDG_RUNTIME_DIR", old) })
}

func dialSubscriber(t *testing.T, name string) net.Conn {
	t.Helper()
	path, err := ipc.SubscriberSocketPath(name)
	if err != nil {
		t.Fatal(err)
	}
	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("unix", path)
		if err == nil {
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("failed to dial subscriber socket %s: %v", path, err)
	return nil
}

func TestHubPublishDeliversToSubscriber(t *testing.T) {
	withTestRuntimeDir(t)

	calls := 0
	hub := NewHub(nil, func() State {
		calls++
		return State{IsPaused: calls > 1}
	})

	if err := hub.Subscribe("watcher", false); err != nil {
		t.Fatal(err)
	}
	conn := dialSubscriber(t, "watcher")
	defer conn.Close()
	reader := bufio.NewReader(conn)

	hub.Publish("toggle_pause")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatal(err)
	}
	var n Notification
	if err := json.Unmarshal(line, &n); err != nil {
		t.Fatal(err)
	}
	if n.Event != "toggle_pause" {
		t.Fatalf("expected event toggle_pause, got %s", n.Event)
	}
}

func TestHubFilterStateChangesSuppressesIdenticalState(t *testing.T) {
	withTestRuntimeDir(t)

	hub := NewHub(nil, func() State { return State{ResizeDelta: 50} })
	if err := hub.Subscribe("watcher", true); err != nil {
		t.Fatal(err)
	}
	conn := dialSubscriber(t, "watcher")
	defer conn.Close()
	reader := bufio.NewReader(conn)

	hub.Publish("move_container")
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := reader.ReadBytes('\n'); err != nil {
		t.Fatalf("expected first publish to be delivered: %v", err)
	}

	hub.Publish("move_container")

	done := make(chan struct{})
	var readErr error
	go func() {
		conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		_, readErr = reader.ReadBytes('\n')
		close(done)
	}()
	<-done
	if readErr == nil {
		t.Fatalf("expected the unchanged second state to be suppressed, but a notification arrived")
	}
}

func TestHubUnsubscribeRemovesSubscriber(t *testing.T) {
	withTestRuntimeDir(t)

	hub := NewHub(nil, func() State { return State{} })
	if err := hub.Subscribe("watcher", false); err != nil {
		t.Fatal(err)
	}
	if err := hub.Unsubscribe("watcher"); err != nil {
		t.Fatal(err)
	}
	if err := hub.Unsubscribe("watcher"); err == nil {
		t.Fatalf("expected error unsubscribing an already-removed name")
	}

	path, err := ipc.SubscriberSocketPath("watcher")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := net.Dial("unix", path); err == nil {
		t.Fatalf("expected socket at %s to be gone after unsubscribe", filepath.Base(path))
	}
}
