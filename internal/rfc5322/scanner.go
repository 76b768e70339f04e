package rfc5322

import (
	"bytes"
	"io"

	"github.com/moriyoshi/badass-srs/internal/bufio"
)

// ScannerHandler receives the pieces of a message as Scan finds them.
// A header line is passed as its physical lines without terminators, so
// chunks after the first begin with whitespace.
type ScannerHandler interface {
	HandleStraggler([]byte) error
	HandleHeaderLine([][]byte) error
	HandleBody(bufio.BufferedReader) error
}

// readLine returns the next line without its terminator. Lines longer than
// the reader's buffer are stitched together.
func readLine(r bufio.BufferedReader) ([]byte, bool, error) {
	var acc []byte
	for {
		l, borrowable, err := r.ReadUpTo('\n')
		if err == bufio.ErrBufferFull {
			acc = append(acc, l...)
			continue
		}
		if acc != nil {
			l, borrowable = append(acc, l...), true
		}
		if len(l) == 0 {
			return nil, true, err
		}
		if l[len(l)-1] == '\n' {
			l = l[:len(l)-1]
			if len(l) > 0 && l[len(l)-1] == '\r' {
				l = l[:len(l)-1]
			}
		}
		return l, borrowable, err
	}
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t'
}

// Scan splits the header section of the message in r into header lines,
// then hands the rest of r to the body handler. Continuation lines that
// appear before any header are reported as stragglers.
func Scan(r bufio.BufferedReader, handler ScannerHandler) error {
	var chunks [][]byte
	flush := func() error {
		if len(chunks) == 0 {
			return nil
		}
		err := handler.HandleHeaderLine(chunks)
		chunks = chunks[:0]
		return err
	}
	for {
		l, borrowable, err := readLine(r)
		eof := err == io.EOF
		if err != nil && !eof {
			return err
		}
		if len(l) > 0 && isWhitespace(l[0]) {
			if len(chunks) == 0 {
				err = handler.HandleStraggler(l)
				if err != nil {
					return err
				}
				if eof {
					break
				}
				continue
			}
		} else {
			err = flush()
			if err != nil {
				return err
			}
			if len(l) == 0 {
				break
			}
		}
		if !borrowable {
			l = append([]byte(nil), l...)
		}
		chunks = append(chunks, l)
		if eof {
			err = flush()
			if err != nil {
				return err
			}
			break
		}
	}
	return handler.HandleBody(r)
}

type functionBackedScannerHandler struct {
	StragglerHandler  func([]byte) error
	HeaderLineHandler func([][]byte) error
	BodyHandler       func(bufio.BufferedReader) error
}

func (h *functionBackedScannerHandler) HandleStraggler(l []byte) error {
	if h.StragglerHandler == nil {
		return nil
	}
	return h.StragglerHandler(l)
}

func (h *functionBackedScannerHandler) HandleHeaderLine(l [][]byte) error {
	if h.HeaderLineHandler == nil {
		return nil
	}
	return h.HeaderLineHandler(l)
}

func (h *functionBackedScannerHandler) HandleBody(r bufio.BufferedReader) error {
	if h.BodyHandler == nil {
		return nil
	}
	return h.BodyHandler(r)
}

func ScannerHandlerFromFunctions(
	stragglerHandler func([]byte) error,
	headerLineHandler func([][]byte) error,
	bodyHandler func(bufio.BufferedReader) error,
) ScannerHandler {
	return &functionBackedScannerHandler{
		StragglerHandler:  stragglerHandler,
		HeaderLineHandler: headerLineHandler,
		BodyHandler:       bodyHandler,
	}
}

// SplitHeaderLine splits the first chunk of a header line at its colon. ok
// is false if there is no colon.
func SplitHeaderLine(chunks [][]byte) (name []byte, value [][]byte, ok bool) {
	if len(chunks) == 0 {
		return nil, nil, false
	}
	i := bytes.IndexByte(chunks[0], ':')
	if i < 0 {
		return nil, nil, false
	}
	value = make([][]byte, len(chunks))
	value[0] = chunks[0][i+1:]
	copy(value[1:], chunks[1:])
	return chunks[0][:i], value, true
}
