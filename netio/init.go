package netio

import "sync/atomic"

var sigpipeInstalled atomic.Bool

// Init performs one-time, process-wide setup required before using this
// package's connections for send/receive: it suppresses the platform's
// equivalent of SIGPIPE so that a write to a peer that has reset the
// connection surfaces as an error return rather than terminating the
// process. Safe to call more than once, and from multiple goroutines;
// only the first call takes effect, guarded by a compare-and-swap so
// concurrent callers never install the handler twice.
func Init() {
	if sigpipeInstalled.CompareAndSwap(false, true) {
		ignoreSigpipe()
	}
}

// Cleanup is the process-wide teardown counterpart to Init. There is
// currently nothing to undo; it exists so callers have a symmetric
// lifecycle to invoke.
func Cleanup() {}
