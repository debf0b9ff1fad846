package transport

type config struct {
	trace *Trace
}

func newConfig() *config {
	return &config{trace: NoOpLoggingHooks}
}

// Option configures a Server at Create time.
type Option func(*config)

// WithTrace attaches event hooks to a Server. Any hook left nil in trace
// is backfilled with a no-op so callers only need to supply the events
// they care about.
func WithTrace(trace *Trace) Option {
	return func(c *config) { c.trace = trace }
}
