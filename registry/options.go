package registry

type config struct {
	trace *Trace
}

func newConfig() *config {
	return &config{trace: NoOpLoggingHooks}
}

// Option configures a Registry at New time.
type Option func(*config)

// WithTrace attaches registry-churn event hooks to a Registry. Any hook
// left nil in trace is backfilled with a no-op so callers only need to
// supply the events they care about.
func WithTrace(trace *Trace) Option {
	return func(c *config) { c.trace = trace }
}
