package wire

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestRoundTripLogin(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.EncodeLogin("dev-01", "tok"))

	msg, err := NewDecoder(&buf).Decode()
	assert.NoError(t, err)
	assert.Equal(t, OpLogin, msg.Opcode)
	assert.Equal(t, "dev-01", msg.DeviceID)
	assert.Equal(t, "tok", msg.Token)
}

func TestRoundTripCommand(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.EncodeCommand([]byte(`{"op":"ping"}`)))

	msg, err := NewDecoder(&buf).Decode()
	assert.NoError(t, err)
	assert.Equal(t, OpCommand, msg.Opcode)
	assert.Equal(t, []byte(`{"op":"ping"}`), msg.Raw)
}

func TestRoundTripFileMeta(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.EncodeFileMeta("a.bin", 5))

	msg, err := NewDecoder(&buf).Decode()
	assert.NoError(t, err)
	assert.Equal(t, OpFileMeta, msg.Opcode)
	assert.Equal(t, "a.bin", msg.Filename)
	assert.Equal(t, uint64(5), msg.FileSize)
}

func TestRoundTripFileChunk(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.EncodeFileChunk("s1", "t", 0, []byte("hello")))

	msg, err := NewDecoder(&buf).Decode()
	assert.NoError(t, err)
	assert.Equal(t, OpFileChunk, msg.Opcode)
	assert.Equal(t, "s1", msg.SessionID)
	assert.Equal(t, "t", msg.Token)
	assert.Equal(t, uint32(0), msg.ChunkOffset)
	assert.Equal(t, uint32(5), msg.ChunkLen)
	assert.Equal(t, []byte("hello"), msg.ChunkData)
}

func TestRoundTripFileDone(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.EncodeFileDone("s1", "t"))

	msg, err := NewDecoder(&buf).Decode()
	assert.NoError(t, err)
	assert.Equal(t, OpFileDone, msg.Opcode)
	assert.Equal(t, "s1", msg.SessionID)
	assert.Equal(t, "t", msg.Token)
}

func TestRoundTripAckAndError(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.EncodeAck(200, "ok"))
	assert.NoError(t, enc.EncodeErrorFrame(500, "bad"))

	dec := NewDecoder(&buf)

	ack, err := dec.Decode()
	assert.NoError(t, err)
	assert.Equal(t, OpAck, ack.Opcode)
	assert.Equal(t, uint16(200), ack.StatusCode)
	assert.Equal(t, "ok", ack.StatusMessage)

	errFrame, err := dec.Decode()
	assert.NoError(t, err)
	assert.Equal(t, OpError, errFrame.Opcode)
	assert.Equal(t, uint16(500), errFrame.StatusCode)
	assert.Equal(t, "bad", errFrame.StatusMessage)
}

func TestBoundsRejection(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	err := enc.EncodeLogin(strings.Repeat("d", MaxDeviceID+1), "tok")
	assert.Error(t, err)
	assert.Equal(t, 0, buf.Len(), "no bytes should reach the transport on a bounds violation")

	err = enc.EncodeLogin("dev", strings.Repeat("t", MaxToken+1))
	assert.Error(t, err)
	assert.Equal(t, 0, buf.Len())

	err = enc.EncodeFileMeta(strings.Repeat("f", MaxFilename+1), 1)
	assert.Error(t, err)
	assert.Equal(t, 0, buf.Len())

	err = enc.EncodeFileChunk(strings.Repeat("s", MaxSession+1), "t", 0, []byte("x"))
	assert.Error(t, err)
	assert.Equal(t, 0, buf.Len())

	err = enc.EncodeAck(1, strings.Repeat("m", MaxStatusMessage+1))
	assert.Error(t, err)
	assert.Equal(t, 0, buf.Len())

	err = enc.EncodeCommand(make([]byte, MaxPayload+1))
	assert.Error(t, err)
	assert.Equal(t, 0, buf.Len())
}

func TestOversizeFrameRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(OpCommand))
	lenBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBytes, MaxPayload+1)
	buf.Write(lenBytes)
	// No payload bytes follow; Decode must fail before attempting to
	// read any of the declared (oversize) payload.

	_, err := NewDecoder(&buf).Decode()
	assert.Error(t, err)
}

func TestBigEndianWireLayout(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.EncodeFileMeta("x", 0x0102030405060708))

	raw := buf.Bytes()
	payload := raw[headerSize:]
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, payload[2:10])
}

func TestDecodeWarningLeavesFieldsEmptyButSucceeds(t *testing.T) {
	var buf bytes.Buffer
	// Hand-craft a truncated LOGIN payload: declares dev_len/tok_len that
	// do not fit in the frame.
	buf.WriteByte(byte(OpLogin))
	lenBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBytes, 3)
	buf.Write(lenBytes)
	buf.Write([]byte{10, 0, 0}) // dev_len=10 but no bytes follow

	msg, err := NewDecoder(&buf).Decode()
	assert.NoError(t, err, "a malformed sub-structure must not fail the top-level decode")
	assert.Equal(t, OpLogin, msg.Opcode)
	assert.Empty(t, msg.DeviceID)
	assert.Empty(t, msg.Token)
}

func TestUnknownOpcodeLeavesOnlyRaw(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x55)
	lenBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBytes, 3)
	buf.Write(lenBytes)
	buf.Write([]byte("abc"))

	msg, err := NewDecoder(&buf).Decode()
	assert.NoError(t, err)
	assert.Equal(t, Opcode(0x55), msg.Opcode)
	assert.Equal(t, []byte("abc"), msg.Raw)
}
