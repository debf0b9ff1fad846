//go:build windows

package netio

// Windows has no SIGPIPE; a write to a reset connection already surfaces
// as a plain error from net.Conn.Write.
func ignoreSigpipe() {}
