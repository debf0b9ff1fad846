package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/fleetlink/agentproto/netio"
)

// Encoder serialises protocol messages onto a stream. It is not safe for
// concurrent use by multiple goroutines; callers that share a connection
// across goroutines must serialise their own sends (see protocol.Conn).
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder that writes frames to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// writeFrame builds the complete header-plus-payload frame in one buffer
// and hands it to netio.SendAll as a single write, so that the header and
// payload can never be interleaved with another frame's bytes on the same
// connection.
func (e *Encoder) writeFrame(op Opcode, payload []byte) error {
	if len(payload) > MaxPayload {
		return errors.Wrapf(ErrFrameTooLarge, "opcode %s: payload is %d bytes", op, len(payload))
	}

	buf := make([]byte, headerSize+len(payload))
	buf[0] = byte(op)
	binary.BigEndian.PutUint32(buf[1:headerSize], uint32(len(payload)))
	copy(buf[headerSize:], payload)

	if err := netio.SendAll(e.w, buf); err != nil {
		return errors.Wrapf(err, "wire: send %s frame", op)
	}
	return nil
}

// EncodeLogin builds and sends a LOGIN frame.
func (e *Encoder) EncodeLogin(deviceID, token string) error {
	if len(deviceID) > MaxDeviceID {
		return errors.Wrapf(ErrFieldTooLarge, "device_id is %d bytes, max %d", len(deviceID), MaxDeviceID)
	}
	if len(token) > MaxToken {
		return errors.Wrapf(ErrFieldTooLarge, "token is %d bytes, max %d", len(token), MaxToken)
	}

	payload := make([]byte, 1+2+len(deviceID)+len(token))
	payload[0] = byte(len(deviceID))
	binary.BigEndian.PutUint16(payload[1:3], uint16(len(token)))
	copy(payload[3:], deviceID)
	copy(payload[3+len(deviceID):], token)

	return e.writeFrame(OpLogin, payload)
}

// EncodeCommand sends an opaque COMMAND frame. The payload is treated as
// JSON by callers but is never interpreted by this layer.
func (e *Encoder) EncodeCommand(payload []byte) error {
	return e.writeFrame(OpCommand, payload)
}

// EncodeFileMeta announces an upcoming (or completed) file transfer.
func (e *Encoder) EncodeFileMeta(filename string, size uint64) error {
	if len(filename) > MaxFilename {
		return errors.Wrapf(ErrFieldTooLarge, "filename is %d bytes, max %d", len(filename), MaxFilename)
	}

	payload := make([]byte, 2+8+len(filename))
	binary.BigEndian.PutUint16(payload[0:2], uint16(len(filename)))
	binary.BigEndian.PutUint64(payload[2:10], size)
	copy(payload[10:], filename)

	return e.writeFrame(OpFileMeta, payload)
}

// EncodeFileChunk sends one chunk of file data, with the offset it
// belongs at and the session/token correlating it to a transfer.
func (e *Encoder) EncodeFileChunk(sessionID, token string, offset uint32, chunk []byte) error {
	if len(sessionID) > MaxSession {
		return errors.Wrapf(ErrFieldTooLarge, "session_id is %d bytes, max %d", len(sessionID), MaxSession)
	}
	if len(token) > MaxToken {
		return errors.Wrapf(ErrFieldTooLarge, "token is %d bytes, max %d", len(token), MaxToken)
	}

	payload := make([]byte, 1+1+len(sessionID)+len(token)+4+4+len(chunk))
	payload[0] = byte(len(sessionID))
	payload[1] = byte(len(token))
	pos := 2
	copy(payload[pos:], sessionID)
	pos += len(sessionID)
	copy(payload[pos:], token)
	pos += len(token)
	binary.BigEndian.PutUint32(payload[pos:pos+4], offset)
	pos += 4
	binary.BigEndian.PutUint32(payload[pos:pos+4], uint32(len(chunk)))
	pos += 4
	copy(payload[pos:], chunk)

	return e.writeFrame(OpFileChunk, payload)
}

// EncodeFileDone marks a file transfer as finished.
func (e *Encoder) EncodeFileDone(sessionID, token string) error {
	if len(sessionID) > MaxSession {
		return errors.Wrapf(ErrFieldTooLarge, "session_id is %d bytes, max %d", len(sessionID), MaxSession)
	}
	if len(token) > MaxToken {
		return errors.Wrapf(ErrFieldTooLarge, "token is %d bytes, max %d", len(token), MaxToken)
	}

	payload := make([]byte, 1+1+len(sessionID)+len(token))
	payload[0] = byte(len(sessionID))
	payload[1] = byte(len(token))
	copy(payload[2:], sessionID)
	copy(payload[2+len(sessionID):], token)

	return e.writeFrame(OpFileDone, payload)
}

// EncodeAck sends a status frame with opcode ACK.
func (e *Encoder) EncodeAck(code uint16, message string) error {
	return e.encodeStatus(OpAck, code, message)
}

// EncodeErrorFrame sends a status frame with opcode ERROR. It shares its
// payload layout with EncodeAck; only the opcode differs.
func (e *Encoder) EncodeErrorFrame(code uint16, message string) error {
	return e.encodeStatus(OpError, code, message)
}

func (e *Encoder) encodeStatus(op Opcode, code uint16, message string) error {
	if len(message) > MaxStatusMessage {
		return errors.Wrapf(ErrFieldTooLarge, "status message is %d bytes, max %d", len(message), MaxStatusMessage)
	}

	payload := make([]byte, 2+2+len(message))
	binary.BigEndian.PutUint16(payload[0:2], code)
	binary.BigEndian.PutUint16(payload[2:4], uint16(len(message)))
	copy(payload[4:], message)

	return e.writeFrame(op, payload)
}

// Decoder deserialises protocol messages from a stream. It is not safe
// for concurrent use by multiple goroutines.
type Decoder struct {
	r io.Reader
}

// NewDecoder returns a Decoder that reads frames from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads and parses the next frame. It fails only on a transport
// error, a truncated header or payload, or a declared length exceeding
// MaxPayload — never on a malformed sub-structure within an
// otherwise-complete frame; see the Wire limits comment and decodeFields.
func (d *Decoder) Decode() (*Message, error) {
	header, err := netio.RecvExact(d.r, headerSize)
	if err != nil {
		return nil, errors.Wrap(err, "wire: read frame header")
	}

	op := Opcode(header[0])
	length := binary.BigEndian.Uint32(header[1:headerSize])
	if length > MaxPayload {
		return nil, errors.Wrapf(ErrFrameTooLarge, "declared length %d exceeds %d", length, MaxPayload)
	}

	var payload []byte
	if length > 0 {
		payload, err = netio.RecvExact(d.r, int(length))
		if err != nil {
			return nil, errors.Wrap(err, "wire: read frame payload")
		}
	}

	msg := &Message{Opcode: op, Raw: payload}
	decodeFields(msg)
	return msg, nil
}

// decodeFields fills in the opcode-specific fields of msg from msg.Raw,
// leaving them at their zero value if the sub-structure is truncated or
// out of range. It never returns an error: that is the "decode warning"
// policy from the frame codec design — only the top-level frame
// boundaries are treated as fatal.
func decodeFields(m *Message) {
	switch m.Opcode {
	case OpLogin:
		decodeLogin(m)
	case OpCommand:
		// raw JSON payload, already in m.Raw.
	case OpFileMeta:
		decodeFileMeta(m)
	case OpFileChunk:
		decodeFileChunk(m)
	case OpFileDone:
		decodeFileDone(m)
	case OpAck, OpError:
		decodeStatus(m)
	default:
		// unknown opcode: only Opcode and Raw are populated.
	}
}

func decodeLogin(m *Message) {
	p := m.Raw
	if len(p) < 3 {
		return
	}
	devLen := int(p[0])
	tokLen := int(binary.BigEndian.Uint16(p[1:3]))
	if tokLen > MaxToken {
		return
	}
	if len(p) < 3+devLen+tokLen {
		return
	}
	m.DeviceID = string(p[3 : 3+devLen])
	m.Token = string(p[3+devLen : 3+devLen+tokLen])
}

func decodeFileMeta(m *Message) {
	p := m.Raw
	if len(p) < 10 {
		return
	}
	nameLen := int(binary.BigEndian.Uint16(p[0:2]))
	if nameLen > MaxFilename {
		return
	}
	if len(p) < 10+nameLen {
		return
	}
	m.FileSize = binary.BigEndian.Uint64(p[2:10])
	m.Filename = string(p[10 : 10+nameLen])
}

func decodeFileChunk(m *Message) {
	p := m.Raw
	if len(p) < 2 {
		return
	}
	sidLen := int(p[0])
	tokLen := int(p[1])
	if sidLen > MaxSession || tokLen > MaxToken {
		return
	}
	pos := 2
	if len(p) < pos+sidLen+tokLen+8 {
		return
	}
	m.SessionID = string(p[pos : pos+sidLen])
	pos += sidLen
	m.Token = string(p[pos : pos+tokLen])
	pos += tokLen
	m.ChunkOffset = binary.BigEndian.Uint32(p[pos : pos+4])
	m.ChunkLen = binary.BigEndian.Uint32(p[pos+4 : pos+8])
	m.ChunkData = p[pos+8:]
}

func decodeFileDone(m *Message) {
	p := m.Raw
	if len(p) < 2 {
		return
	}
	sidLen := int(p[0])
	tokLen := int(p[1])
	if sidLen > MaxSession || tokLen > MaxToken {
		return
	}
	pos := 2
	if len(p) < pos+sidLen+tokLen {
		return
	}
	m.SessionID = string(p[pos : pos+sidLen])
	pos += sidLen
	m.Token = string(p[pos : pos+tokLen])
}

func decodeStatus(m *Message) {
	p := m.Raw
	if len(p) < 4 {
		return
	}
	code := binary.BigEndian.Uint16(p[0:2])
	msgLen := int(binary.BigEndian.Uint16(p[2:4]))
	if msgLen > MaxStatusMessage {
		return
	}
	if len(p) < 4+msgLen {
		return
	}
	m.StatusCode = code
	m.StatusMessage = string(p[4 : 4+msgLen])
}
