package protocol

import (
	"context"
	"log"

	"github.com/imdario/mergo"

	"github.com/fleetlink/agentproto/transport"
)

// unique type to prevent assignment.
type protocolEventContextKey struct{}

// ContextTrace returns the Trace associated with the provided context.
// If none, it returns NoOpLoggingHooks.
func ContextTrace(ctx context.Context) *Trace {
	trace, _ := ctx.Value(protocolEventContextKey{}).(*Trace)
	if trace == nil {
		trace = NoOpLoggingHooks
	} else {
		_ = mergo.Merge(trace, NoOpLoggingHooks) // nolint: gosec, errcheck
	}
	return trace
}

// WithProtocolTrace returns a new context based on the provided parent
// ctx, carrying trace for retrieval with ContextTrace. NewServer does not
// read a context; its hooks come from the WithTrace option.
func WithProtocolTrace(ctx context.Context, trace *Trace) context.Context {
	return context.WithValue(ctx, protocolEventContextKey{}, trace)
}

// Trace defines a structure for handling protocol-server trace events.
// It embeds the underlying transport.Trace so a single hook set can
// observe both layers, the way netconf.Trace embeds *ssh.Trace.
type Trace struct {
	*transport.Trace

	// Decoded is called after each frame is decoded, with err indicating
	// whether the top-level decode (not the sub-structure) succeeded.
	Decoded func(c *Conn, err error)

	// LoginRegistered is called after a LOGIN frame registers (or
	// replaces) a device in the registry.
	LoginRegistered func(c *Conn, deviceID string)

	// Disconnected is called when a connection's frame loop exits, after
	// the registry entry (if any) has been removed.
	Disconnected func(c *Conn, deviceID string)
}

// DefaultLoggingHooks provides a default logging hook to report decode
// errors and every disconnect of a logged-in connection.
var DefaultLoggingHooks = &Trace{
	Decoded: func(c *Conn, err error) {
		if err != nil {
			log.Printf("protocol: decode conn:%s error:%v\n", c.ID(), err)
		}
	},
	Disconnected: func(c *Conn, deviceID string) {
		log.Printf("protocol: disconnected conn:%s device_id:%s\n", c.ID(), deviceID)
	},
}

// DiagnosticLoggingHooks provides a set of verbose diagnostic hooks.
var DiagnosticLoggingHooks = &Trace{
	Decoded: func(c *Conn, err error) {
		log.Printf("protocol: decode conn:%s error:%v\n", c.ID(), err)
	},
	LoginRegistered: func(c *Conn, deviceID string) {
		log.Printf("protocol: login registered conn:%s device_id:%s\n", c.ID(), deviceID)
	},
	Disconnected: func(c *Conn, deviceID string) {
		log.Printf("protocol: disconnected conn:%s device_id:%s\n", c.ID(), deviceID)
	},
}

// NoOpLoggingHooks provides a set of hooks that do nothing.
var NoOpLoggingHooks = &Trace{
	Decoded:         func(c *Conn, err error) {},
	LoginRegistered: func(c *Conn, deviceID string) {},
	Disconnected:    func(c *Conn, deviceID string) {},
}

// normalizeTrace backfills any nil hook in t from NoOpLoggingHooks. A
// nil t is replaced outright with NoOpLoggingHooks. The embedded
// transport.Trace is left as-is when nil: transport.Create applies the
// same normalization to it independently, the way NewServer only wires
// ssh.WithSshTrace through when the embedded trace is non-nil.
func normalizeTrace(t *Trace) *Trace {
	if t == nil {
		return NoOpLoggingHooks
	}
	_ = mergo.Merge(t, NoOpLoggingHooks) // nolint: gosec, errcheck
	return t
}
