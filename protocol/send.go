package protocol

import (
	"github.com/pkg/errors"

	"github.com/fleetlink/agentproto/wire"
)

// ErrEmptyField is returned by a send constructor when a required field
// is empty; ErrFieldTooLarge (from wire) is returned when a field
// exceeds its bound. Both are argument errors: detected and reported
// before any byte reaches the transport.
var ErrEmptyField = errors.New("protocol: required field is empty")

// ErrNilConn is returned by every Send*/RecvMessage method when called
// on a nil *Conn, the Go equivalent of the original's fd == INVALID_SOCKET
// check: an argument error, returned before any I/O is attempted.
var ErrNilConn = errors.New("protocol: conn is nil")

// SendLogin transmits a LOGIN frame. device_id and token must be
// non-empty and within the §3 bounds.
func (c *Conn) SendLogin(deviceID, token string) error {
	if c == nil {
		return ErrNilConn
	}
	if deviceID == "" {
		return errors.Wrap(ErrEmptyField, "device_id")
	}
	if token == "" {
		return errors.Wrap(ErrEmptyField, "token")
	}
	return c.enc.EncodeLogin(deviceID, token)
}

// SendCommand transmits a COMMAND frame carrying payload (opaque bytes,
// conventionally JSON, never interpreted by this layer). payload must
// be non-empty and at most wire.MaxPayload bytes.
//
// This method is also what makes *Conn satisfy registry.DeviceConn,
// letting the device registry address a connection by device_id without
// importing this package.
func (c *Conn) SendCommand(payload []byte) error {
	if c == nil {
		return ErrNilConn
	}
	if len(payload) == 0 {
		return errors.Wrap(ErrEmptyField, "command payload")
	}
	return c.enc.EncodeCommand(payload)
}

// SendFileMeta announces an upcoming (or completed) file transfer.
// filename must be non-empty and at most wire.MaxFilename bytes.
func (c *Conn) SendFileMeta(filename string, size uint64) error {
	if c == nil {
		return ErrNilConn
	}
	if filename == "" {
		return errors.Wrap(ErrEmptyField, "filename")
	}
	return c.enc.EncodeFileMeta(filename, size)
}

// SendFileChunk sends one chunk of file data. sessionID and token may be
// empty; chunk must be non-empty and at most wire.MaxPayload bytes.
func (c *Conn) SendFileChunk(sessionID, token string, offset uint32, chunk []byte) error {
	if c == nil {
		return ErrNilConn
	}
	if len(chunk) == 0 {
		return errors.Wrap(ErrEmptyField, "chunk data")
	}
	return c.enc.EncodeFileChunk(sessionID, token, offset, chunk)
}

// SendFileDone marks a file transfer as finished.
func (c *Conn) SendFileDone(sessionID, token string) error {
	if c == nil {
		return ErrNilConn
	}
	return c.enc.EncodeFileDone(sessionID, token)
}

// SendAck transmits a status frame with opcode ACK. message may be
// empty; if present it must be at most wire.MaxStatusMessage bytes.
func (c *Conn) SendAck(code uint16, message string) error {
	if c == nil {
		return ErrNilConn
	}
	return c.enc.EncodeAck(code, message)
}

// SendError transmits a status frame with opcode ERROR. It shares its
// payload layout with SendAck; only the opcode differs.
func (c *Conn) SendError(code uint16, message string) error {
	if c == nil {
		return ErrNilConn
	}
	return c.enc.EncodeErrorFrame(code, message)
}

// RecvMessage blocks until the next frame is fully decoded, or fails on
// a transport error, a truncated header or payload, or an oversize
// declared length. A malformed sub-structure inside an otherwise
// complete frame does not fail RecvMessage; the message's opcode-
// specific fields are simply left empty (see wire.Decoder.Decode).
func (c *Conn) RecvMessage() (*wire.Message, error) {
	if c == nil {
		return nil, ErrNilConn
	}
	return c.dec.Decode()
}
