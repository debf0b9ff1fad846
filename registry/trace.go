package registry

import (
	"context"
	"log"

	"github.com/imdario/mergo"
)

// unique type to prevent assignment.
type registryEventContextKey struct{}

// ContextRegistryTrace returns the Trace associated with the provided
// context. If none, it returns NoOpLoggingHooks.
func ContextRegistryTrace(ctx context.Context) *Trace {
	trace, _ := ctx.Value(registryEventContextKey{}).(*Trace)
	if trace == nil {
		trace = NoOpLoggingHooks
	} else {
		_ = mergo.Merge(trace, NoOpLoggingHooks) // nolint: gosec, errcheck
	}
	return trace
}

// WithRegistryTrace returns a new context based on the provided parent
// ctx, carrying trace for retrieval with ContextRegistryTrace. New does
// not read a context; its hooks come from the WithTrace option.
func WithRegistryTrace(ctx context.Context, trace *Trace) context.Context {
	return context.WithValue(ctx, registryEventContextKey{}, trace)
}

// Trace defines a structure for handling device-registry churn events:
// registration, replacement, removal, and the outcome of routing a
// command to a device.
type Trace struct {
	// Set is called after a device_id is registered, with replaced
	// indicating whether it displaced an existing entry.
	Set func(deviceID string, replaced bool)

	// Removed is called after RemoveIfCurrent actually deletes an entry
	// (a no-op call, because the entry was already replaced by a newer
	// connection, does not trigger it).
	Removed func(deviceID string)

	// SendResult is called once per SendToDevice call, with err nil on
	// success. A non-nil err means the device was either not registered
	// (ErrNotFound) or its connection's send failed and was evicted.
	SendResult func(deviceID string, err error)
}

// DefaultLoggingHooks provides a default logging hook to report errors.
var DefaultLoggingHooks = &Trace{
	SendResult: func(deviceID string, err error) {
		if err != nil {
			log.Printf("registry: send device_id:%s error:%v\n", deviceID, err)
		}
	},
}

// DiagnosticLoggingHooks provides a set of verbose diagnostic hooks.
var DiagnosticLoggingHooks = &Trace{
	Set: func(deviceID string, replaced bool) {
		log.Printf("registry: set device_id:%s replaced:%v\n", deviceID, replaced)
	},
	Removed: func(deviceID string) {
		log.Printf("registry: removed device_id:%s\n", deviceID)
	},
	SendResult: func(deviceID string, err error) {
		log.Printf("registry: send device_id:%s error:%v\n", deviceID, err)
	},
}

// NoOpLoggingHooks provides a set of hooks that do nothing.
var NoOpLoggingHooks = &Trace{
	Set:        func(deviceID string, replaced bool) {},
	Removed:    func(deviceID string) {},
	SendResult: func(deviceID string, err error) {},
}

// normalizeTrace backfills any nil hook in t from NoOpLoggingHooks. A
// nil t is replaced outright with NoOpLoggingHooks.
func normalizeTrace(t *Trace) *Trace {
	if t == nil {
		return NoOpLoggingHooks
	}
	_ = mergo.Merge(t, NoOpLoggingHooks) // nolint: gosec, errcheck
	return t
}
