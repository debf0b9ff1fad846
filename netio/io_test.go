package netio

import (
	"bytes"
	"io"
	"testing"

	assert "github.com/stretchr/testify/require"
)

type shortWriter struct {
	limit int
	buf   bytes.Buffer
}

func (w *shortWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n > w.limit {
		n = w.limit
	}
	w.buf.Write(p[:n])
	return n, nil
}

func TestSendAllWritesEverything(t *testing.T) {
	var buf bytes.Buffer
	err := SendAll(&buf, []byte("hello, world"))
	assert.NoError(t, err)
	assert.Equal(t, "hello, world", buf.String())
}

func TestSendAllLoopsOnShortWrite(t *testing.T) {
	w := &shortWriter{limit: 3}
	err := SendAll(w, []byte("hello, world"))
	assert.NoError(t, err)
	assert.Equal(t, "hello, world", w.buf.String())
}

func TestSendAllFailsOnZeroWrite(t *testing.T) {
	w := &shortWriter{limit: 0}
	err := SendAll(w, []byte("x"))
	assert.Error(t, err)
}

func TestRecvExactReadsFullBuffer(t *testing.T) {
	r := bytes.NewReader([]byte("hello"))
	got, err := RecvExact(r, 5)
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestRecvExactFailsOnTruncatedStream(t *testing.T) {
	r := bytes.NewReader([]byte("hi"))
	_, err := RecvExact(r, 5)
	assert.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
