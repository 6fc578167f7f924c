package command

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/1broseidon/komorebi/internal/ipc"
)

// Server accepts connections on the primary command socket and
// dispatches each newline-delimited JSON command it receives against
// Engine, per spec.md §6: "The server does not send replies unless the
// command is a query; queries reply with one JSON payload and close."
type Server struct {
	Engine   *Engine
	Logger   *slog.Logger
	listener net.Listener
}

// Listen opens the command socket at path, replacing any stale socket
// file left behind by a prior crashed instance.
func (s *Server) Listen(path string) error {
	os.Remove(path)
	listener, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	if err := os.Chmod(path, 0600); err != nil {
		listener.Close()
		return err
	}
	s.listener = listener
	return nil
}

// Serve accepts connections until the listener is closed. Each
// connection is handled on its own goroutine.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func isQuery(t Type) bool {
	return t == TypeQueryState || t == TypeQueryGlobalState
}

// handleConn reads and dispatches every command on one connection. A
// query command gets one JSON reply and the connection is then closed
// (spec.md §6); a mutating command gets no reply and the loop continues
// reading further commands from the same connection, since "each
// connection carries one or more newline-delimited JSON messages."
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	c := ipc.NewConn(conn)

	for {
		var cmd Command
		err := c.ReadMessage(&cmd)
		if err != nil {
			if err != io.EOF && s.Logger != nil {
				s.Logger.Error("command socket read failed", "error", err)
			}
			return
		}
		if cmd.Type == "" {
			return
		}

		resp := s.Engine.Dispatch(&cmd)

		if isQuery(cmd.Type) {
			if err := c.WriteMessage(resp); err != nil && s.Logger != nil {
				s.Logger.Warn("command socket write failed", "error", err)
			}
			return
		}
		if resp.Status == "ERROR" && s.Logger != nil {
			s.Logger.Warn("command failed", "type", cmd.Type, "error", resp.Error)
		}
	}
}
