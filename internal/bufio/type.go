package bufio

import (
	_bufio "bufio"
	"io"
)

var ErrBufferFull = _bufio.ErrBufferFull

type Scanner interface {
	// ReadUpTo reads through the first occurrence of delim. The bool result
	// reports whether the caller may keep the returned slice after the next
	// read. ErrBufferFull means the line continues.
	ReadUpTo(delim byte) ([]byte, bool, error)
}

// BufferedReader is what the message scanner reads from. Whatever is left
// after the header section is read through io.Reader.
type BufferedReader interface {
	io.Reader
	Scanner
}
