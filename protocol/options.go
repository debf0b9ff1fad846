package protocol

import "github.com/fleetlink/agentproto/registry"

type config struct {
	trace               *Trace
	registryTrace       *registry.Trace
	disconnect          DisconnectHandler
	forceCloseOnReplace bool
}

func newConfig() *config {
	return &config{trace: NoOpLoggingHooks}
}

// Option configures a Server at NewServer time.
type Option func(*config)

// WithTrace attaches protocol-level event hooks to a Server.
func WithTrace(trace *Trace) Option {
	return func(c *config) { c.trace = trace }
}

// WithRegistryTrace attaches device-registry churn hooks (registration,
// replacement, removal, SendToDevice outcome) to a Server's registry.
func WithRegistryTrace(trace *registry.Trace) Option {
	return func(c *config) { c.registryTrace = trace }
}

// WithDisconnectHandler registers the callback invoked when a
// connection's frame loop exits. It runs after the connection's entry
// (if any) has already been removed from the registry, so an IsOnline
// check performed inside the handler observes the device as offline.
// It is only invoked when the connection's sticky device_id is
// non-empty (i.e. it logged in at least once).
func WithDisconnectHandler(h DisconnectHandler) Option {
	return func(c *config) { c.disconnect = h }
}

// WithForceCloseOnLoginReplace answers the open question in §9 of the
// protocol design: whether a LOGIN that displaces a prior registry entry
// should also force-close the prior connection. The default is false
// (displace only, matching the original implementation's behaviour);
// passing true closes the prior connection's socket once the new one
// has taken over the registry entry.
func WithForceCloseOnLoginReplace(enabled bool) Option {
	return func(c *config) { c.forceCloseOnReplace = enabled }
}
