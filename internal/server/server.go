// internal/server/server.go

// Package server accepts client connections and runs one session per
// connection. Two transports feed the same session loop: raw TCP and a
// WebSocket endpoint for browser-based clients.
package server

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/Riad-Zz/chipichipi/internal/directory"
	"github.com/Riad-Zz/chipichipi/internal/middleware"
	"github.com/Riad-Zz/chipichipi/internal/session"
	"github.com/Riad-Zz/chipichipi/internal/store"
)

// Server holds the shared collaborators every session is bound to.
type Server struct {
	dir      *directory.Directory
	store    *store.FileStore
	registry *session.Registry
	logger   *logrus.Logger
}

// New wires a server around the shared directory, store and registry.
func New(dir *directory.Directory, st *store.FileStore, registry *session.Registry, logger *logrus.Logger) *Server {
	return &Server{
		dir:      dir,
		store:    st,
		registry: registry,
		logger:   logger,
	}
}

// Serve runs the accept loop until the listener is closed. Each accepted
// connection gets its own goroutine; accepting never blocks on a running
// session, and no connection limit is imposed.
func (s *Server) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		go s.handleConn(conn, "tcp")
	}
}

// handleConn drives one session over an established connection. Shared by
// both transports.
func (s *Server) handleConn(conn net.Conn, transport string) {
	remote := conn.RemoteAddr().String()
	middleware.LogConnect(s.logger, transport, remote)
	defer conn.Close()

	session.New(conn, s.dir, s.store, s.registry, s.logger, remote).Run()

	middleware.LogDisconnect(s.logger, transport, remote, nil)
}
