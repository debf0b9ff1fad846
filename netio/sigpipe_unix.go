//go:build !windows

package netio

import (
	"os/signal"
	"syscall"
)

func ignoreSigpipe() {
	signal.Ignore(syscall.SIGPIPE)
}
