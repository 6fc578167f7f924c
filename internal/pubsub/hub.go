package pubsub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/komorebi/internal/ipc"
)

const writeDeadline = 500 * time.Millisecond

// Notification is the wire payload written to every subscriber on
// every published event, per spec.md §6.
type Notification struct {
	Event string `json:"event"`
	State State  `json:"state"`
}

// Snapshotter produces the current State snapshot. *wm.WindowManager
// paired with pubsub.BuildState satisfies this via a closure.
type Snapshotter func() State

type subscriber struct {
	name                string
	filterStateChanges  bool
	listener            net.Listener

	mu        sync.Mutex
	conn      *ipc.Conn
	lastState []byte
}

// Hub accepts subscriber registrations and fans out notifications to
// each subscriber's own socket, per spec.md §6.
type Hub struct {
	mu       sync.Mutex
	subs     map[string]*subscriber
	logger   *slog.Logger
	snapshot Snapshotter
}

// NewHub builds a notification hub. snapshot is called once per
// Publish to build the payload shared by every subscriber that round.
func NewHub(logger *slog.Logger, snapshot Snapshotter) *Hub {
	return &Hub{subs: make(map[string]*subscriber), logger: logger, snapshot: snapshot}
}

// Subscribe opens a listener at the deterministic per-name path and
// begins waiting for the subscriber to connect. Re-subscribing under
// the same name replaces the previous registration.
func (h *Hub) Subscribe(name string, filterStateChanges bool) error {
	path, err := ipc.SubscriberSocketPath(name)
	if err != nil {
		return fmt.Errorf("pubsub: failed to resolve subscriber socket path: %w", err)
	}

	// Close any previous registration before listening again: closing a
	// unix listener unlinks its path, which would remove the new socket.
	h.mu.Lock()
	if old, ok := h.subs[name]; ok {
		h.closeSubscriber(old)
		delete(h.subs, name)
	}
	h.mu.Unlock()
	os.Remove(path)

	listener, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("pubsub: failed to listen on subscriber socket: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("pubsub: failed to set subscriber socket permissions: %w", err)
	}

	sub := &subscriber{name: name, filterStateChanges: filterStateChanges, listener: listener}

	h.mu.Lock()
	h.subs[name] = sub
	h.mu.Unlock()

	go h.acceptLoop(sub)
	return nil
}

func (h *Hub) acceptLoop(sub *subscriber) {
	conn, err := sub.listener.Accept()
	if err != nil {
		return
	}
	sub.mu.Lock()
	sub.conn = ipc.NewConn(conn)
	sub.mu.Unlock()
}

// Unsubscribe tears down a subscriber's listener and connection.
func (h *Hub) Unsubscribe(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[name]
	if !ok {
		return fmt.Errorf("pubsub: no subscriber named %q", name)
	}
	h.closeSubscriber(sub)
	delete(h.subs, name)
	return nil
}

func (h *Hub) closeSubscriber(sub *subscriber) {
	sub.listener.Close()
	sub.mu.Lock()
	if sub.conn != nil {
		sub.conn.Close()
	}
	sub.mu.Unlock()
}

// Publish builds one state snapshot and writes it to every subscriber,
// skipping those whose filter_state_changes option suppresses an
// unchanged state and dropping any whose write fails, per spec.md §5
// Timeouts.
func (h *Hub) Publish(event string) {
	state := h.snapshot()
	stateBytes, err := json.Marshal(state)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("pubsub: failed to marshal state", "error", err)
		}
		return
	}
	payload := Notification{Event: event, State: state}

	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	var dead []string
	for _, sub := range targets {
		sub.mu.Lock()
		if sub.conn == nil {
			sub.mu.Unlock()
			continue
		}
		if sub.filterStateChanges && bytes.Equal(stateBytes, sub.lastState) {
			sub.mu.Unlock()
			continue
		}
		err := sub.conn.WriteMessageWithDeadline(payload, writeDeadline)
		if err != nil {
			sub.mu.Unlock()
			if h.logger != nil {
				h.logger.Warn("pubsub: dropping subscriber after failed write", "name", sub.name, "error", err)
			}
			dead = append(dead, sub.name)
			continue
		}
		sub.lastState = stateBytes
		sub.mu.Unlock()
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, name := range dead {
			if sub, ok := h.subs[name]; ok {
				h.closeSubscriber(sub)
				delete(h.subs, name)
			}
		}
		h.mu.Unlock()
	}
}

// Close tears down every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, sub := range h.subs {
		h.closeSubscriber(sub)
		delete(h.subs, name)
	}
}
