// Package transport implements the generic, domain-agnostic TCP
// connection server: listen, accept, dispatch one worker goroutine per
// connection, and shut down in bounded time. It knows nothing about
// frames or devices — protocol.Server builds the framed device protocol
// on top of it, the way v2/netconf/server/netconf layers a NETCONF
// session on top of v2/netconf/server/ssh's channel accept loop.
package transport

import (
	"net"
	"strconv"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Handler services one accepted connection. It is invoked on its own
// goroutine and owns conn until it returns; the server closes conn
// immediately afterwards.
type Handler interface {
	Handle(conn net.Conn)
}

// HandlerFunc adapts a plain function to a Handler.
type HandlerFunc func(conn net.Conn)

// Handle calls f(conn).
func (f HandlerFunc) Handle(conn net.Conn) { f(conn) }

// Server accepts TCP connections and dispatches each to a Handler on its
// own goroutine.
type Server struct {
	listener net.Listener
	handler  Handler
	trace    *Trace

	running atomic.Bool
	done    chan struct{}
}

// Create starts listening on host:port and begins accepting connections
// in the background. An empty host binds to all interfaces. The backlog
// used is whatever the platform's net.Listen applies by default; the Go
// standard library does not expose a way to request a specific value.
func Create(host string, port int, handler Handler, opts ...Option) (*Server, error) {
	if handler == nil {
		return nil, errors.New("transport: handler is required")
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.trace = normalizeTrace(cfg.trace)

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	cfg.trace.Listened(addr, err)
	if err != nil {
		return nil, errors.Wrap(err, "transport: listen")
	}

	s := &Server{
		listener: ln,
		handler:  handler,
		trace:    cfg.trace,
		done:     make(chan struct{}),
	}
	s.running.Store(true)

	go s.acceptLoop()

	return s, nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) acceptLoop() {
	defer close(s.done)
	s.trace.StartAccepting()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		s.trace.Accepted(conn, err)
		if err != nil {
			if !s.running.Load() {
				return
			}
			// Transient accept error: already traced, keep serving.
			continue
		}
		go s.runWorker(conn)
	}
}

// runWorker hands one accepted connection to the Handler. Unlike a
// pthread_create in the C original, a Go "go" statement does not fail in
// a way a caller can observe and react to, so there is no Go analogue to
// the original's "drop the client if the worker thread could not be
// spawned" path.
func (s *Server) runWorker(conn net.Conn) {
	defer conn.Close()
	s.handler.Handle(conn)
}

// Stop transitions the server from running to stopped exactly once; a
// second call is a no-op. On the first call, it closes the listening
// socket, which unblocks the in-flight Accept call, and waits for the
// accept loop to exit before returning. Already-running per-connection
// workers are unaffected and continue until their own loop ends.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	_ = s.listener.Close()
	<-s.done
	s.trace.Stopped()
}

// Destroy stops the server if it has not already been stopped and
// releases its resources. Per-connection workers continue until their
// own loop exits; Destroy does not wait for them.
func (s *Server) Destroy() {
	s.Stop()
}
