package transport

import (
	"context"
	"log"
	"net"

	"github.com/imdario/mergo"
)

// unique type to prevent assignment.
type transportEventContextKey struct{}

// ContextTransportTrace returns the Trace associated with the provided
// context. If none, it returns NoOpLoggingHooks.
func ContextTransportTrace(ctx context.Context) *Trace {
	trace, _ := ctx.Value(transportEventContextKey{}).(*Trace)
	if trace == nil {
		trace = NoOpLoggingHooks
	} else {
		_ = mergo.Merge(trace, NoOpLoggingHooks) // nolint: gosec, errcheck
	}
	return trace
}

// WithTransportTrace returns a new context based on the provided parent
// ctx, carrying trace for retrieval with ContextTransportTrace. Create
// does not read a context; its hooks come from the WithTrace option.
func WithTransportTrace(ctx context.Context, trace *Trace) context.Context {
	return context.WithValue(ctx, transportEventContextKey{}, trace)
}

// Trace defines a structure for handling server lifecycle events.
type Trace struct {
	// Listened is called when a Listen() call completes, with err
	// indicating whether it was successful.
	Listened func(address string, err error)

	// StartAccepting is called when the accept loop starts.
	StartAccepting func()

	// Accepted is called when an Accept() call completes, with err
	// indicating whether it was successful.
	Accepted func(conn net.Conn, err error)

	// Stopped is called once the accept loop has exited following Stop.
	Stopped func()
}

// DefaultLoggingHooks provides a default logging hook to report errors,
// plus the start and stop of accepting.
var DefaultLoggingHooks = &Trace{
	Listened: func(address string, e error) {
		if e != nil {
			log.Printf("transport: listen address:%s status:%v\n", address, e)
		}
	},
	StartAccepting: func() {
		log.Printf("transport: start accepting\n")
	},
	Accepted: func(conn net.Conn, e error) {
		if e != nil {
			log.Printf("transport: accept status:%v\n", e)
		}
	},
	Stopped: func() {
		log.Printf("transport: stopped\n")
	},
}

// DiagnosticLoggingHooks provides a set of verbose diagnostic hooks.
var DiagnosticLoggingHooks = &Trace{
	Listened: func(address string, e error) {
		log.Printf("transport: listen address:%s status:%v\n", address, e)
	},
	StartAccepting: func() {
		log.Printf("transport: start accepting\n")
	},
	Accepted: func(conn net.Conn, e error) {
		log.Printf("transport: accept conn:%v status:%v\n", conn, e)
	},
	Stopped: func() {
		log.Printf("transport: stopped\n")
	},
}

// NoOpLoggingHooks provides a set of hooks that do nothing.
var NoOpLoggingHooks = &Trace{
	Listened:       func(address string, e error) {},
	StartAccepting: func() {},
	Accepted:       func(conn net.Conn, e error) {},
	Stopped:        func() {},
}

// normalizeTrace backfills any nil hook in t from NoOpLoggingHooks so
// callers only need to supply the events they care about. A nil t is
// replaced outright with NoOpLoggingHooks.
func normalizeTrace(t *Trace) *Trace {
	if t == nil {
		return NoOpLoggingHooks
	}
	_ = mergo.Merge(t, NoOpLoggingHooks) // nolint: gosec, errcheck
	return t
}
