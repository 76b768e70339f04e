package bufio

import (
	_bufio "bufio"
	"bytes"
	"io"
)

// BytesReaderWrapper adapts a bytes.Reader to BufferedReader. Slices it
// returns are freshly allocated.
type BytesReaderWrapper struct {
	*bytes.Reader
}

func (w *BytesReaderWrapper) ReadUpTo(delim byte) ([]byte, bool, error) {
	var b []byte
	for {
		c, err := w.ReadByte()
		if err != nil {
			return b, true, err
		}
		b = append(b, c)
		if c == delim {
			break
		}
	}
	return b, true, nil
}

var _ BufferedReader = &BytesReaderWrapper{}

// BufferWrapper adapts a bufio.Reader to BufferedReader. Slices it returns
// are only valid until the next read.
type BufferWrapper struct {
	*_bufio.Reader
}

func (w *BufferWrapper) ReadUpTo(delim byte) ([]byte, bool, error) {
	b, err := w.ReadSlice(delim)
	return b, false, err
}

var _ BufferedReader = &BufferWrapper{}

// NewReader wraps r in a BufferWrapper with a buffer of at least size
// bytes.
func NewReader(r io.Reader, size int) *BufferWrapper {
	return &BufferWrapper{Reader: _bufio.NewReaderSize(r, size)}
}
