// Package protocol implements the framed device/agent control channel
// (C5 protocol server, C7 client send API) on top of transport (C4) and
// wire (C3): a per-connection frame loop with sticky device-id tracking,
// a device registry, and a typed client API, layered the way
// v2/netconf/server/netconf layers a session protocol on top of
// v2/netconf/server/ssh's generic accept loop.
package protocol

import (
	"net"

	"github.com/google/uuid"

	"github.com/fleetlink/agentproto/wire"
)

// Conn is one active connection on the control channel: a socket plus
// the codec wrapping it and the connection's identity. It is shared by
// both the server (one per accepted client) and the client (the single
// connection returned by Dial).
//
// Conn provides no internal send lock: per §5 of the wire protocol, the
// library guarantees a single frame's header and payload are never
// interleaved with another frame on the same connection, but it does
// not serialise concurrent callers. Code that shares a Conn across
// goroutines must serialise its own sends.
type Conn struct {
	id   uuid.UUID
	conn net.Conn
	enc  *wire.Encoder
	dec  *wire.Decoder

	// device is the sticky device_id for this connection: the last
	// non-empty device_id observed on any frame, backfilled onto frames
	// that omit it. It is touched only by the worker goroutine that owns
	// this Conn's frame loop (see Server.handleConnection), never shared
	// state.
	device string
}

func newConn(nc net.Conn) *Conn {
	return &Conn{
		id:   uuid.New(),
		conn: nc,
		enc:  wire.NewEncoder(nc),
		dec:  wire.NewDecoder(nc),
	}
}

// ID returns a process-local identifier correlating this Conn across
// trace log lines; it has no meaning on the wire.
func (c *Conn) ID() uuid.UUID { return c.id }

// RemoteAddr returns the address of the peer, or nil if unavailable.
func (c *Conn) RemoteAddr() net.Addr {
	if c.conn == nil {
		return nil
	}
	return c.conn.RemoteAddr()
}

// StickyDeviceID returns the last non-empty device_id observed on this
// connection, or "" if none has been seen yet.
func (c *Conn) StickyDeviceID() string {
	return c.device
}

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return c.conn.Close()
}
