package protocol

import (
	"net"

	"github.com/fleetlink/agentproto/registry"
	"github.com/fleetlink/agentproto/transport"
	"github.com/fleetlink/agentproto/wire"
)

// MessageHandler is invoked synchronously, on the connection's own
// worker goroutine, for every frame whose top-level decode succeeds.
// Implementations must tolerate parallel invocation across different
// connections; a slow handler for one connection does not block
// others, but it does delay that connection's own next frame.
type MessageHandler interface {
	HandleMessage(c *Conn, msg *wire.Message)
}

// MessageHandlerFunc adapts a plain function to a MessageHandler.
type MessageHandlerFunc func(c *Conn, msg *wire.Message)

// HandleMessage calls f(c, msg).
func (f MessageHandlerFunc) HandleMessage(c *Conn, msg *wire.Message) { f(c, msg) }

// DisconnectHandler is invoked once a connection's frame loop has
// exited and its registry entry (if any) has been removed, so any
// IsOnline check the handler performs observes the device offline. It
// is only invoked when the connection logged in at least once (its
// sticky device_id is non-empty).
type DisconnectHandler interface {
	HandleDisconnect(c *Conn, deviceID string)
}

// DisconnectHandlerFunc adapts a plain function to a DisconnectHandler.
type DisconnectHandlerFunc func(c *Conn, deviceID string)

// HandleDisconnect calls f(c, deviceID).
func (f DisconnectHandlerFunc) HandleDisconnect(c *Conn, deviceID string) { f(c, deviceID) }

// Server is the protocol-level (C5) server: a frame loop per connection
// layered on top of a transport.Server (C4), with device-id stickiness
// and a device registry (C6). It owns its own registry — per §9's
// "global mutable state" design note, the registry is not process-wide,
// so multiple independent Servers in one process never share devices.
type Server struct {
	transport *transport.Server
	registry  *registry.Registry[*Conn]

	onMessage           MessageHandler
	onDisconnect        DisconnectHandler
	forceCloseOnReplace bool
	trace               *Trace
}

// NewServer starts listening on host:port and begins accepting
// connections, dispatching each through the protocol frame loop.
// onMessage is required; a disconnect handler is optional (see
// WithDisconnectHandler).
func NewServer(host string, port int, onMessage MessageHandler, opts ...Option) (*Server, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.trace = normalizeTrace(cfg.trace)

	var registryOpts []registry.Option
	if cfg.registryTrace != nil {
		registryOpts = append(registryOpts, registry.WithTrace(cfg.registryTrace))
	}

	s := &Server{
		registry:            registry.New[*Conn](registryOpts...),
		onMessage:            onMessage,
		onDisconnect:         cfg.disconnect,
		forceCloseOnReplace:  cfg.forceCloseOnReplace,
		trace:                cfg.trace,
	}

	tr, err := transport.Create(host, port, transport.HandlerFunc(s.handleConnection), transport.WithTrace(cfg.trace.Trace))
	if err != nil {
		return nil, err
	}
	s.transport = tr

	return s, nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.transport.Addr()
}

// Stop see transport.Server.Stop.
func (s *Server) Stop() {
	s.transport.Stop()
}

// Destroy see transport.Server.Destroy.
func (s *Server) Destroy() {
	s.transport.Destroy()
}

// IsOnline reports whether deviceID currently has a registered
// connection.
func (s *Server) IsOnline(deviceID string) bool {
	return s.registry.IsOnline(deviceID)
}

// SendToDevice resolves deviceID's connection in the registry and
// transmits a COMMAND frame carrying payload on it.
func (s *Server) SendToDevice(deviceID string, payload []byte) error {
	return s.registry.SendToDevice(deviceID, payload)
}

// handleConnection is the per-connection frame loop (C5 §4.4). It runs
// on its own goroutine, one per accepted client, for the lifetime of
// transport.Server's worker dispatch.
func (s *Server) handleConnection(nc net.Conn) {
	c := newConn(nc)

	defer s.endConnection(c)

	for {
		msg, err := c.dec.Decode()
		s.trace.Decoded(c, err)
		if err != nil {
			return
		}

		s.applyStickyDeviceID(c, msg)

		s.onMessage.HandleMessage(c, msg)
	}
}

// applyStickyDeviceID implements §4.4 step 3: backfill an empty
// device_id from the connection's sticky value, or update the sticky
// value from a non-empty one; register LOGIN frames in the registry
// under replacement semantics.
func (s *Server) applyStickyDeviceID(c *Conn, msg *wire.Message) {
	if msg.DeviceID == "" {
		msg.DeviceID = c.device
	} else {
		c.device = msg.DeviceID
	}

	if msg.Opcode == wire.OpLogin && msg.DeviceID != "" {
		prior, hadPrior := s.registry.Get(msg.DeviceID)
		s.registry.Set(msg.DeviceID, c)
		s.trace.LoginRegistered(c, msg.DeviceID)

		if s.forceCloseOnReplace && hadPrior && prior != c {
			_ = prior.Close()
		}
	}
}

// endConnection implements §4.4's loop-exit sequence: remove the
// connection from the registry if it is still current for its sticky
// device_id, invoke the disconnect callback (if registered and the
// device_id is non-empty) after removal, then close the connection.
func (s *Server) endConnection(c *Conn) {
	deviceID := c.device
	if deviceID != "" {
		s.registry.RemoveIfCurrent(deviceID, c)
	}

	if deviceID != "" {
		s.trace.Disconnected(c, deviceID)
		if s.onDisconnect != nil {
			s.onDisconnect.HandleDisconnect(c, deviceID)
		}
	}

	_ = c.Close()
}
