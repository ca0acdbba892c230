// Package server implements the TCP listener, its per-connection sessions
// and the command dispatcher. Each accepted connection runs a blocking
// read/dispatch/respond cycle in its own goroutine; all sessions browse the
// same shared root.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/fsbrowse/fsbrowse/internal/config"
	"github.com/fsbrowse/fsbrowse/internal/listing"
	"github.com/fsbrowse/fsbrowse/internal/nav"
	"github.com/fsbrowse/fsbrowse/internal/protocol"
)

// MsgUnknownCommand is the wire literal for an unrecognized verb.
const MsgUnknownCommand = "Unknown command"

// Server accepts and serves browsing sessions over plain TCP.
type Server struct {
	cfg    config.Config
	nav    *nav.Navigator
	lister *listing.Lister

	mu       sync.Mutex
	clients  map[net.Conn]struct{}
	listener net.Listener
}

// New returns a pointer to a new [Server].
func New(cfg config.Config, navigator *nav.Navigator, lister *listing.Lister) *Server {
	return &Server{
		cfg:     cfg,
		nav:     navigator,
		lister:  lister,
		clients: make(map[net.Conn]struct{}),
	}
}

// ListenAndServe binds the configured address and serves until the context
// is cancelled. Cancellation closes the listener and all tracked client
// connections; in-flight requests are cut off, not drained.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("(server) failed to listen: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	slog.Info("Server listening.", "addr", listener.Addr(), "root", s.nav.Root())
	s.logDiskUsage(s.nav.Root())

	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Server stopped.")

				return nil
			}

			return fmt.Errorf("(server) failed to accept: %w", err)
		}

		s.track(conn)
		go s.handleConn(conn)
	}
}

// Addr returns the bound listener address, or nil before ListenAndServe.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// handleConn runs the session loop of one client connection until the peer
// disconnects or the connection becomes unusable. Failures here never affect
// other sessions.
func (s *Server) handleConn(conn net.Conn) {
	peer := conn.RemoteAddr()

	slog.Info("New connection.", "peer", peer)
	defer s.untrack(conn)

	for {
		line, err := protocol.ReadCommand(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				slog.Info("Client disconnected.", "peer", peer)
			} else {
				slog.Warn("Session read failure.", "err", err, "peer", peer)
			}

			return
		}

		slog.Debug("Received command.", "peer", peer, "command", line)

		if err := protocol.WriteMessage(conn, s.handleCommand(line)); err != nil {
			slog.Warn("Failed to send response.", "err", err, "peer", peer)

			return
		}
	}
}

// handleCommand parses one command line and routes it to the lister or the
// navigator, returning the raw response payload.
func (s *Server) handleCommand(line string) []byte {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		slog.Warn("Received empty command.")

		return []byte(MsgUnknownCommand)
	}

	verb, args := fields[0], fields[1:]

	switch verb {
	case "ls":
		rel := ""
		if len(args) > 0 {
			rel = args[0]
		}

		return s.handleList(rel)

	case "cd":
		if len(args) == 0 {
			// A bare cd used to kill the whole session; it now earns a
			// regular rejection instead.
			slog.Warn("Received cd without a target.")

			return []byte(nav.MsgInvalidPath)
		}

		return s.handleChangeRoot(args[0])

	default:
		slog.Warn("Received unknown command.", "command", verb)

		return []byte(MsgUnknownCommand)
	}
}

func (s *Server) handleList(rel string) []byte {
	root := s.nav.Root()
	result := s.lister.List(root, rel)

	payload, err := json.Marshal(result)
	if err != nil {
		payload, _ = json.Marshal(&listing.Listing{Error: err.Error()})
	}

	slog.Debug("Listed directory.", "root", root, "rel", rel, "bytes", len(payload))

	return payload
}

func (s *Server) handleChangeRoot(target string) []byte {
	ok, msg := s.nav.ChangeRoot(target)
	if !ok {
		slog.Warn("Rejected root change.", "target", target, "reason", msg)

		return []byte(msg)
	}

	root := s.nav.Root()
	slog.Info("Root changed.", "root", root)
	s.logDiskUsage(root)

	return []byte(msg)
}

func (s *Server) logDiskUsage(root string) {
	stats, err := listing.DiskUsage(root)
	if err != nil {
		slog.Debug("Failed to establish disk usage.", "err", err, "root", root)

		return
	}

	slog.Info("Root disk usage.", "root", root, "total", stats.TotalSize, "free", stats.FreeSpace)
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clients, conn)
	_ = conn.Close()
}

func (s *Server) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		_ = conn.Close()
	}

	if s.listener != nil {
		_ = s.listener.Close()
	}
}
