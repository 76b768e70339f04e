package rfc5322

import (
	"io"

	"github.com/moriyoshi/badass-srs/internal/bufio"
)

// Builder is a ScannerHandler that writes what it is handed back out as a
// message with CRLF line endings.
type Builder struct {
	io.Writer
	shortWrite bool
}

var newline = []byte{'\r', '\n'}

func (bl *Builder) write(b []byte) error {
	n, err := bl.Writer.Write(b)
	if n != len(b) {
		bl.shortWrite = true
	}
	if err == nil && bl.shortWrite {
		err = io.ErrShortWrite
	}
	return err
}

func (bl *Builder) writeLine(b []byte) error {
	err := bl.write(b)
	if err != nil {
		return err
	}
	return bl.write(newline)
}

func (bl *Builder) HandleStraggler(b []byte) error {
	return bl.writeLine(b)
}

func (bl *Builder) HandleHeaderLine(chunks [][]byte) error {
	for _, chunk := range chunks {
		err := bl.writeLine(chunk)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteField writes "name: value" as a single unfolded line.
func (bl *Builder) WriteField(name, value []byte) error {
	b := make([]byte, 0, len(name)+len(value)+2)
	b = append(b, name...)
	b = append(b, ':', ' ')
	b = append(b, value...)
	return bl.writeLine(b)
}

func (bl *Builder) HandleBody(r bufio.BufferedReader) error {
	err := bl.write(newline)
	if err != nil {
		return err
	}
	_, err = io.Copy(bl.Writer, r)
	return err
}

func (bl *Builder) ShortWrite() bool {
	return bl.shortWrite
}
