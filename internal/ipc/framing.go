package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"
)

// Conn wraps a net.Conn with the newline-delimited JSON framing shared
// by the command and subscription sockets (spec.md §6): each message is
// one JSON object terminated by '\n'.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewConn wraps an already-established connection.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, reader: bufio.NewReader(conn)}
}

// ReadMessage reads one newline-delimited JSON message and decodes it
// into v.
func (c *Conn) ReadMessage(v interface{}) error {
	line, err := c.reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("ipc: read failed: %w", err)
	}
	if len(line) == 0 {
		return io.EOF
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("ipc: malformed message: %w", err)
	}
	return nil
}

// WriteMessage marshals v to JSON and writes it followed by a newline.
func (c *Conn) WriteMessage(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ipc: failed to marshal message: %w", err)
	}
	data = append(data, '\n')
	_, err = c.conn.Write(data)
	return err
}

// WriteMessageWithDeadline writes v, enforcing a short write deadline
// so a stalled subscriber does not block the publisher, per spec.md §5
// Timeouts.
func (c *Conn) WriteMessageWithDeadline(v interface{}, deadline time.Duration) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(deadline)); err != nil {
		return fmt.Errorf("ipc: failed to set write deadline: %w", err)
	}
	defer c.conn.SetWriteDeadline(time.Time{})
	return c.WriteMessage(v)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Underlying exposes the raw net.Conn for callers that need it (e.g.
// to inspect the remote address for logging).
func (c *Conn) Underlying() net.Conn { return c.conn }
