// Package netio provides the stream I/O primitives the framed protocol is
// built on: loop-until-complete send/receive helpers, plus one-time
// process setup. The primitives operate on plain io.Writer/io.Reader so
// they apply equally to a net.Conn and to anything else that looks like
// one (pipes, in-memory buffers in tests).
package netio

import (
	"io"

	"github.com/pkg/errors"
)

// SendAll writes every byte of buf to w, looping until the full buffer
// has been written or an error occurs. Go's net.Conn already retries
// interrupted syscalls internally and its Write contract guarantees a
// full write or a non-nil error, so in practice this loop runs once. A
// Write that violates that contract with a partial write and a nil
// error is continued from where it stopped; one that writes zero bytes
// with a nil error is treated as failure rather than silently reported
// as success, matching a zero-return from a raw socket send().
func SendAll(w io.Writer, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:])
		if err != nil {
			return errors.Wrap(err, "netio: send")
		}
		if n == 0 {
			return errors.New("netio: send: wrote zero bytes")
		}
		total += n
	}
	return nil
}

// RecvExact reads exactly n bytes from r, treating end-of-stream or any
// error as failure. It is used for the fixed-size frame header and for
// reading an exact payload size.
func RecvExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "netio: recv exact")
	}
	return buf, nil
}

// RecvInto fills buf opportunistically until the remote closes the
// connection or all but the last byte of buf has been used, reserving
// room for a caller that appends a NUL terminator and treats the result
// as text. It is not used by the framed protocol — it exists for
// collaborators outside this layer (simple HTTP helpers) that read a
// bounded, text-oriented response directly off a socket.
func RecvInto(r io.Reader, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	limit := len(buf) - 1
	total := 0
	for total < limit {
		n, err := r.Read(buf[total:limit])
		total += n
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, errors.Wrap(err, "netio: recv into")
		}
		if n == 0 {
			return total, nil
		}
	}
	return total, nil
}
