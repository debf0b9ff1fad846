package protocol

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
)

// Dial opens a TCP connection to host:port and wraps it as a Conn ready
// for the C7 client send API and RecvMessage. The returned Conn is not
// yet logged in; callers invoke SendLogin themselves.
func Dial(host string, port int) (*Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "protocol: dial")
	}
	return newConn(nc), nil
}
